package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextRetryAtSchedule(t *testing.T) {
	from := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, from.AddDate(0, 0, 2), NextRetryAt(1, from))
	assert.Equal(t, from.AddDate(0, 0, 5), NextRetryAt(2, from))
	assert.Equal(t, from.AddDate(0, 0, 9), NextRetryAt(3, from))
}

func TestNextRetryAtBeyondSchedule(t *testing.T) {
	from := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, from.AddDate(0, 0, 12), NextRetryAt(4, from))
	assert.Equal(t, from.AddDate(0, 0, 12), NextRetryAt(0, from))
}
