package events

import (
	"encoding/json"
	"log"

	"github.com/SundayYogurt/scholarship_service/internal/dto"
)

type Mailer interface {
	SendSubmittedEmail(event dto.EntranceSubmittedEvent) error
}

// SubmittedHandler mails a confirmation for every submitted application.
type SubmittedHandler struct {
	mailer Mailer
}

func NewSubmittedHandler(mailer Mailer) *SubmittedHandler {
	return &SubmittedHandler{mailer: mailer}
}

func (h *SubmittedHandler) HandleMessage(key, value []byte) error {
	// the topic may carry other events
	if string(key) != dto.EventEntranceApplicationSubmitted {
		return nil
	}

	var event dto.EntranceSubmittedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("invalid event payload: %s", string(value))
		return err
	}

	log.Printf("entrance application submitted: user_id=%s tid=%s email=%s", event.UserID, event.TypeID, event.Email)
	if event.Email == "" {
		log.Println("[MAIL] no email on event - skip")
		return nil
	}
	return h.mailer.SendSubmittedEmail(event)
}
