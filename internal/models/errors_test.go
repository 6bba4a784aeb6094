package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStorageError("create notification", cause)

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, "create notification: connection refused")

	wrapped := fmt.Errorf("notify: %w", err)
	var storageErr *StorageError
	assert.ErrorAs(t, wrapped, &storageErr)
	assert.Equal(t, "create notification", storageErr.Op)
}

func TestNewStorageErrorNil(t *testing.T) {
	assert.NoError(t, NewStorageError("anything", nil))
}

func TestPartialFanoutError(t *testing.T) {
	err := &PartialFanoutError{Failures: []RecipientFailure{
		{RecipientID: 7, Type: NotificationTypeReply, Err: NewStorageError("create notification", errors.New("timeout"))},
		{RecipientID: 9, Type: NotificationTypeComment, Err: ErrNotFound},
	}}

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrPermission)
	assert.Contains(t, err.Error(), "2 recipient(s)")
	assert.Contains(t, err.Error(), "recipient 7 (reply)")
}
