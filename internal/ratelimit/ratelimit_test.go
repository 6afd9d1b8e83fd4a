package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowRespectsBurst(t *testing.T) {
	krl := New(1, 3)
	defer krl.Stop()

	passed := 0
	for range 5 {
		if krl.Allow("client-a") {
			passed++
		}
	}
	assert.Equal(t, 3, passed)
}

func TestKeysAreIndependent(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	assert.True(t, krl.Allow("client-a"))
	assert.False(t, krl.Allow("client-a"))

	// A different client still has its full burst.
	assert.True(t, krl.Allow("client-b"))
}

func TestStopIsIdempotent(t *testing.T) {
	krl := New(1, 1)
	krl.Stop()
	krl.Stop()
}
