package dto

// SessionUser is the user record cached in the visitor session under the "user" key.
type SessionUser struct {
	UserID     string `json:"user_id" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
	Program    string `json:"program"`
}
