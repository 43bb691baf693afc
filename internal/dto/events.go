package dto

const EventEntranceApplicationSubmitted = "entrance_application.submitted"

type EntranceSubmittedEvent struct {
	UserID        string `json:"user_id"`
	StudentTypeID string `json:"stid"`
	TypeID        string `json:"tid"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	SubmittedAt   string `json:"submitted_at"`
}
