package usecase

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type ErrNotFound struct {
	ID      uuid.UUID
	Code    string
	Message string
}

func (e ErrNotFound) Error() string {
	return e.Message
}

// ErrValidation is returned before any store access.
type ErrValidation struct {
	Field   string
	Message string
}

func (e ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

type ErrUnauthorized struct {
	Message string
}

func (e ErrUnauthorized) Error() string {
	return e.Message
}

type ErrMissingRequiredSlot struct {
	Slot string
}

func (e ErrMissingRequiredSlot) Error() string {
	return fmt.Sprintf("%s is required for a new app asset record", e.Slot)
}

// ErrUploadFailed aborts a mutation before anything is committed; the prior
// record and its objects stay authoritative.
type ErrUploadFailed struct {
	Slot string
	Err  error
}

func (e ErrUploadFailed) Error() string {
	return fmt.Sprintf("%s upload failed: %v", e.Slot, e.Err)
}

func (e ErrUploadFailed) Unwrap() error {
	return e.Err
}

// ErrPersistenceFailedAfterUpload means the new objects listed in Keys exist
// in the object store but no durable record references them.
type ErrPersistenceFailedAfterUpload struct {
	Keys []string
	Err  error
}

func (e ErrPersistenceFailedAfterUpload) Error() string {
	return fmt.Sprintf("record not saved after upload of %d object(s) [%s]: %v",
		len(e.Keys), strings.Join(e.Keys, ", "), e.Err)
}

func (e ErrPersistenceFailedAfterUpload) Unwrap() error {
	return e.Err
}
