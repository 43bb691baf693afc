package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/SundayYogurt/scholarship_service/internal/dto"
	"github.com/go-playground/validator/v10"
)

const SessionUserKey = "user"

var (
	ErrNoSession      = errors.New("user not found in session")
	ErrInvalidSession = errors.New("invalid session user record")
)

var validate = validator.New()

// ParseSessionUser decodes the cached user record. An empty value is ErrNoSession.
func ParseSessionUser(raw string) (*dto.SessionUser, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrNoSession
	}

	var user dto.SessionUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return &user, nil
}

// EncodeSessionUser validates a record before it is cached.
func EncodeSessionUser(user dto.SessionUser) (string, error) {
	user.UserID = strings.TrimSpace(user.UserID)
	user.Email = strings.TrimSpace(user.Email)
	if err := validate.Struct(user); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	b, err := json.Marshal(user)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// applySessionUser merges the cached identity into the profile.
func applySessionUser(form *EntranceForm, user *dto.SessionUser) {
	form.UserID = user.UserID
	form.HasSession = true
	form.Profile.EmailAddress = user.Email
	form.Profile.FirstName = user.FirstName
	form.Profile.MiddleName = user.MiddleName
	form.Profile.LastName = user.LastName
	form.Profile.Department = user.Department
	form.Profile.Program = user.Program
}
