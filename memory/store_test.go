package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acquire(t *testing.T, s *Store, sessionID string) *Lease {
	t.Helper()
	l, err := s.Acquire(context.Background(), sessionID)
	require.NoError(t, err)
	return l
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	s := NewStore(2, time.Minute)

	a := acquire(t, s, "a")
	a.Window.Append(turn(1))
	a.Release()

	b := acquire(t, s, "b")
	assert.Equal(t, 0, b.Window.Len())
	b.Release()

	a = acquire(t, s, "a")
	assert.Equal(t, 1, a.Window.Len())
	a.Release()

	assert.Equal(t, 2, s.Count())
}

func TestStore_Forget(t *testing.T) {
	s := NewStore(2, time.Minute)
	l := acquire(t, s, "a")
	l.Window.Append(turn(1))
	l.Release()

	s.Forget("a")

	l = acquire(t, s, "a")
	defer l.Release()
	assert.Equal(t, 0, l.Window.Len())
}

func TestStore_ReleaseIsIdempotent(t *testing.T) {
	s := NewStore(2, time.Minute)
	l := acquire(t, s, "a")
	l.Release()
	l.Release()

	done := make(chan struct{})
	go func() {
		acquire(t, s, "a").Release()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session still locked after Release")
	}
}

func TestStore_ConcurrentAppendsSameSession(t *testing.T) {
	s := NewStore(100, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l := acquire(t, s, "shared")
			defer l.Release()
			l.Window.Append(turn(i))
		}(i)
	}
	wg.Wait()

	l := acquire(t, s, "shared")
	defer l.Release()
	require.Equal(t, 50, l.Window.Len())
}

func TestStore_ExpiredSessionStartsEmpty(t *testing.T) {
	s := NewStore(2, 20*time.Millisecond)
	l := acquire(t, s, "a")
	l.Window.Append(turn(1))
	l.Release()

	time.Sleep(60 * time.Millisecond)

	l = acquire(t, s, "a")
	defer l.Release()
	assert.Equal(t, 0, l.Window.Len())
}

func TestStore_ForgetWhileLeased(t *testing.T) {
	s := NewStore(2, time.Minute)

	lease := acquire(t, s, "a")
	lease.Window.Append(turn(1))
	s.Forget("a")
	lease.Release()

	assert.Equal(t, 0, s.Count())
	next := acquire(t, s, "a")
	defer next.Release()
	assert.Equal(t, 0, next.Window.Len())
}

func TestStore_AcquireHonoursContext(t *testing.T) {
	s := NewStore(2, time.Minute)
	held := acquire(t, s, "a")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Acquire(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	held.Release()
	l := acquire(t, s, "a")
	l.Release()
}

func TestStore_LeasedSessionOutlivesTTL(t *testing.T) {
	s := NewStore(2, 20*time.Millisecond)

	first := acquire(t, s, "a")
	first.Window.Append(turn(1))
	time.Sleep(60 * time.Millisecond)

	// A request arriving after the TTL waits for the same window
	got := make(chan int, 1)
	go func() {
		l, err := s.Acquire(context.Background(), "a")
		if err != nil {
			got <- -1
			return
		}
		defer l.Release()
		got <- l.Window.Len()
	}()

	time.Sleep(10 * time.Millisecond)
	first.Window.Append(turn(2))
	first.Release()

	select {
	case n := <-got:
		assert.Equal(t, 2, n)
	case <-time.After(time.Second):
		t.Fatal("second request never acquired the session")
	}

	l := acquire(t, s, "a")
	defer l.Release()
	assert.Equal(t, 2, l.Window.Len())
}
