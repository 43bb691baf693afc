package repository

import (
	"github.com/SundayYogurt/scholarship_service/internal/domain"
	"gorm.io/gorm"
)

// ConsentRepository stores the privacy consents applicants give when they submit.
type ConsentRepository interface {
	CreateConsent(consent *domain.UserConsent) error
	HasConsent(userID, code string) (bool, error)
}

type consentRepository struct {
	db *gorm.DB
}

func NewConsentRepository(db *gorm.DB) ConsentRepository {
	return &consentRepository{db: db}
}

func (c *consentRepository) CreateConsent(consent *domain.UserConsent) error {
	return c.db.Create(consent).Error
}

// HasConsent reports whether userID already accepted the consent identified by code.
func (c *consentRepository) HasConsent(userID, code string) (bool, error) {
	var count int64
	err := c.db.Model(&domain.UserConsent{}).
		Where("user_id = ? AND consent_code = ? AND accepted = ?", userID, code, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
