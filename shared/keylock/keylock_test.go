package keylock_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"fleet/shared/keylock"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	locks := keylock.New()

	const goroutines = 50

	var (
		wg      sync.WaitGroup
		counter int
	)

	for range goroutines {
		wg.Add(1)

		go func() {
			defer wg.Done()

			unlock := locks.Lock("car-1")
			defer unlock()

			// Unsynchronized increment; the race detector flags it if two
			// goroutines ever hold the same key at once.
			counter++
		}()
	}

	wg.Wait()

	assert.Equal(t, goroutines, counter)
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	locks := keylock.New()

	unlockA := locks.Lock("car-a")

	done := make(chan struct{})

	go func() {
		unlockB := locks.Lock("car-b")
		unlockB()
		close(done)
	}()

	// car-b must not wait on car-a's lock.
	<-done

	unlockA()
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	locks := keylock.New()

	unlock := locks.Lock("car-1")
	assert.Equal(t, 1, locks.Len())

	unlock()
	assert.Equal(t, 0, locks.Len())

	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			u := locks.Lock("car-2")
			u()
		}()
	}

	wg.Wait()

	assert.Equal(t, 0, locks.Len())
}
