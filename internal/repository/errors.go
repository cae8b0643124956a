package repository

import (
	"database/sql"
	"errors"

	"github.com/ReilBleem13/ChatRooms/internal/domain"
	"github.com/lib/pq"
)

// translateError maps driver errors onto domain errors, keeping the Postgres
// message so it can be shown to the user.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "23505": // unique_violation
		return domain.ErrAlreadyExists.WithMessage(pqErr.Message)
	case "23503", "23514", "22P02": // foreign_key_violation, check_violation, invalid_text_representation
		return domain.ErrInvalidRequest.WithMessage(pqErr.Message)
	case "42501": // insufficient_privilege
		return domain.ErrForbidden.WithMessage(pqErr.Message)
	}
	return err
}
