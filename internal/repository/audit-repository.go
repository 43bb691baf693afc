package repository

import (
	"github.com/SundayYogurt/scholarship_service/internal/domain"
	"gorm.io/gorm"
)

type AuditRepository interface {
	CreateAuditLog(entry *domain.AuditLog) error
	ListByActor(actorID string, limit int) ([]domain.AuditLog, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (a *auditRepository) CreateAuditLog(entry *domain.AuditLog) error {
	return a.db.Create(entry).Error
}

func (a *auditRepository) ListByActor(actorID string, limit int) ([]domain.AuditLog, error) {
	var logs []domain.AuditLog
	err := a.db.Where("actor_id = ?", actorID).Order("created_at DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
