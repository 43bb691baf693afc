package services

import (
	"testing"

	"github.com/SundayYogurt/scholarship_service/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSessionUser(t *testing.T) {
	_, err := ParseSessionUser("")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = ParseSessionUser("{broken")
	assert.ErrorIs(t, err, ErrInvalidSession)

	user, err := ParseSessionUser(sessionJSON)
	require.NoError(t, err)
	assert.Equal(t, "2021-00123", user.UserID)
	assert.Equal(t, "BS Computer Science", user.Program)
}

func TestEncodeSessionUser(t *testing.T) {
	raw, err := EncodeSessionUser(dto.SessionUser{UserID: " 7 ", Email: "a@b.co", FirstName: "Ana"})
	require.NoError(t, err)

	user, err := ParseSessionUser(raw)
	require.NoError(t, err)
	assert.Equal(t, "7", user.UserID)
	assert.Equal(t, "Ana", user.FirstName)

	_, err = EncodeSessionUser(dto.SessionUser{Email: "a@b.co"})
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = EncodeSessionUser(dto.SessionUser{UserID: "7", Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrInvalidSession)
}
