package interrupt

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignal_SetTriggeredReset(t *testing.T) {
	s := New()

	assert.False(t, s.Triggered(), "new signal should not be triggered")

	s.Set()
	assert.True(t, s.Triggered(), "signal should be triggered after Set")

	// Reading does not clear the flag
	assert.True(t, s.Triggered(), "Triggered should not consume the flag")

	s.Reset()
	assert.False(t, s.Triggered(), "signal should be clear after Reset")
}

func TestSignal_ConcurrentAccess(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Set()
		}()
		go func() {
			defer wg.Done()
			_ = s.Triggered()
		}()
	}
	wg.Wait()

	assert.True(t, s.Triggered(), "flag should be set after concurrent writers")
}

func TestShared_ReturnsSameInstance(t *testing.T) {
	a := Shared()
	b := Shared()
	assert.Same(t, a, b, "Shared should always return the same signal")
}
