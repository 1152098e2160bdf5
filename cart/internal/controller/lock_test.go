package controller

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotLocks(t *testing.T) {
	locks := newSlotLocks()

	counter := 0
	wg := sync.WaitGroup{}
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock(slotKey("s1", "R1"))
			defer unlock()
			current := counter
			counter = current + 1
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter, "holders of one slot should not overlap")
	assert.Equal(t, 0, locks.len(), "released slots should be dropped")

	unlockFirst := locks.lock(slotKey("s1", "R1"))
	unlockOther := locks.lock(slotKey("s2", "R1"))
	assert.Equal(t, 2, locks.len(), "different sessions should not share a slot")
	unlockOther()
	unlockFirst()
	assert.Equal(t, 0, locks.len())
}
