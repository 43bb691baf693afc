package handlers

import (
	"encoding/json"
	"log"

	"github.com/SundayYogurt/scholarship_service/internal/dto"
	"github.com/SundayYogurt/scholarship_service/internal/services"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	formSessionKey   = "entrance_form"
	noticeSessionKey = "flash_notice"
)

func sessionString(sess *session.Session, key string) string {
	v, _ := sess.Get(key).(string)
	return v
}

// loadForm returns the form kept in the visitor session, nil when none is open.
func loadForm(sess *session.Session) *services.EntranceForm {
	raw := sessionString(sess, formSessionKey)
	if raw == "" {
		return nil
	}
	var form services.EntranceForm
	if err := json.Unmarshal([]byte(raw), &form); err != nil {
		log.Printf("discarding unreadable form state: %v", err)
		return nil
	}
	return &form
}

func storeForm(sess *session.Session, form *services.EntranceForm) error {
	b, err := json.Marshal(form)
	if err != nil {
		return err
	}
	sess.Set(formSessionKey, string(b))
	return nil
}

func flashNotice(sess *session.Session, notice *dto.Notice) {
	if notice == nil {
		return
	}
	b, err := json.Marshal(notice)
	if err != nil {
		log.Printf("encode flash notice: %v", err)
		return
	}
	sess.Set(noticeSessionKey, string(b))
}

// takeNotice pops the flashed notice, if any.
func takeNotice(sess *session.Session) *dto.Notice {
	raw := sessionString(sess, noticeSessionKey)
	if raw == "" {
		return nil
	}
	sess.Delete(noticeSessionKey)

	var notice dto.Notice
	if err := json.Unmarshal([]byte(raw), &notice); err != nil {
		return nil
	}
	return &notice
}

// sessionUserID reads the user id from the cached user record.
func sessionUserID(sess *session.Session) string {
	user, err := services.ParseSessionUser(sessionString(sess, services.SessionUserKey))
	if err != nil {
		return ""
	}
	return user.UserID
}
