package notification

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInactivityCategory(t *testing.T) {
	assert.Equal(t, Category("inactivity_3d"), InactivityCategory(3))
	assert.Equal(t, Category("inactivity_14d"), InactivityCategory(14))
}

func TestNewEntries(t *testing.T) {
	at := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	sent := NewSentEntry("id-1", "u-1", "inactivity_7d", at)
	assert.Equal(t, StatusSent, sent.Status)
	assert.False(t, sent.FailureDetail.Valid)

	failed := NewFailedEntry("id-2", "u-1", "inactivity_7d", at, errors.New("status 422"))
	assert.Equal(t, StatusFailed, failed.Status)
	assert.True(t, failed.FailureDetail.Valid)
	assert.Equal(t, "status 422", failed.FailureDetail.String)
}
