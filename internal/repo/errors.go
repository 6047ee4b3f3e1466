package repo

import (
	"errors"
	"fmt"
)

var (
	ErrRepository           = errors.New("repository error")
	ErrSessionNotFound      = errors.New("session not found")
	ErrContactNotFound      = errors.New("contact not found")
	ErrAlertAlreadyRecorded = errors.New("alert already recorded")
)

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrRepository, op, err)
}
