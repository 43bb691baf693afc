package helper

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsDuplicateConsent reports whether err is the unique violation on (user_id, consent_code).
func IsDuplicateConsent(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uidx_user_consents_user_code"
	}
	return false
}
