package domain

import (
	"time"

	"gorm.io/gorm"
)

const ConsentEntranceGrantPrivacy = "ENTRANCE_GRANT_PRIVACY"

type UserConsent struct {
	UserID      string     `gorm:"type:varchar(64);not null;index:uidx_user_consents_user_code,unique" json:"user_id"`
	ConsentCode string     `gorm:"type:varchar(50);not null;index:uidx_user_consents_user_code,unique" json:"consent_code"`
	Accepted    bool       `gorm:"not null;default:true" json:"accepted"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	gorm.Model
}
