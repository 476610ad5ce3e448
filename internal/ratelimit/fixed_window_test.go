package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowStopsAtLimit(t *testing.T) {
	l := New(10, time.Minute)

	allowed := 0
	for i := 0; i < 11; i++ {
		if l.Allow("user-1") {
			allowed++
		}
	}
	assert.Equal(t, 10, allowed)
}

func TestWindowResets(t *testing.T) {
	current := time.Unix(1_700_000_000, 0)
	l := New(2, time.Minute)
	l.now = func() time.Time { return current }

	assert.True(t, l.Allow("u"))
	assert.True(t, l.Allow("u"))
	assert.False(t, l.Allow("u"))

	current = current.Add(61 * time.Second)
	assert.True(t, l.Allow("u"))
	assert.True(t, l.Allow("u"))
	assert.False(t, l.Allow("u"))
}

func TestKeysAreIndependent(t *testing.T) {
	l := New(1, time.Minute)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
	assert.False(t, l.Allow("a"))
	assert.Equal(t, 2, l.Len())
}
