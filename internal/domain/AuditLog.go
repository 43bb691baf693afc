package domain

import "time"

const (
	AuditActionSubmit       = "entrance_application.submit"
	AuditActionSubmitFailed = "entrance_application.submit_failed"
	AuditEntityApplication  = "entrance_application"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ActorID   string    `gorm:"type:varchar(64);index" json:"actor_id"` // session user_id, may be empty
	Action    string    `gorm:"type:varchar(100);not null" json:"action"`
	Entity    string    `gorm:"type:varchar(100);not null" json:"entity"`
	EntityID  string    `gorm:"type:varchar(64);index" json:"entity_id"` // type id
	Note      *string   `gorm:"type:text" json:"note,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
