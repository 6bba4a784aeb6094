package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by repositories, services and handlers.
var (
	ErrStorage    = errors.New("storage error")
	ErrNotFound   = errors.New("not found")
	ErrPermission = errors.New("caller identity could not be resolved")
)

// StorageError reports a backend that was unreachable or rejected a read or write.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStorage) true for every StorageError.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// NewStorageError wraps err for op, or returns nil when err is nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// RecipientFailure is one recipient a fan-out could not notify.
type RecipientFailure struct {
	RecipientID uint
	Type        NotificationType
	Err         error
}

// PartialFanoutError lists the recipients that failed while others may have succeeded.
type PartialFanoutError struct {
	Failures []RecipientFailure
}

func (e *PartialFanoutError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("recipient %d (%s): %v", f.RecipientID, f.Type, f.Err))
	}
	return fmt.Sprintf("fan-out failed for %d recipient(s): %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *PartialFanoutError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
