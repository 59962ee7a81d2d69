package cache

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(Options{Grace: time.Minute})
	t.Cleanup(s.Close)
	return s
}

func payload(s string) FetchFunc {
	return func(context.Context) (json.RawMessage, error) {
		return json.RawMessage(s), nil
	}
}

func TestKeyIsDeterministic(t *testing.T) {
	type args struct {
		Page   int    `json:"page,omitempty"`
		Search string `json:"search,omitempty"`
	}
	assert.Equal(t, Key("messages", args{Page: 2}), Key("messages", args{Page: 2}))
	assert.NotEqual(t, Key("messages", args{Page: 2}), Key("messages", args{Page: 3}))
	assert.NotEqual(t, Key("messages", args{}), Key("wallets", args{}))
}

func TestFetchCachesResult(t *testing.T) {
	s := newTestStore(t)
	var calls atomic.Int32
	fetch := func(context.Context) (json.RawMessage, error) {
		calls.Add(1)
		return json.RawMessage(`{"n":1}`), nil
	}

	for i := 0; i < 3; i++ {
		data, err := s.Fetch(context.Background(), "k", []string{"T"}, fetch)
		require.NoError(t, err)
		assert.JSONEq(t, `{"n":1}`, string(data))
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestConcurrentFetchesShareOneFlight(t *testing.T) {
	s := newTestStore(t)
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (json.RawMessage, error) {
		calls.Add(1)
		<-release
		return json.RawMessage(`"shared"`), nil
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]json.RawMessage, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := s.Fetch(context.Background(), "k", nil, fetch)
			require.NoError(t, err)
			results[i] = data
		}(i)
	}

	// Let every goroutine reach the store before the fetch resolves.
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, data := range results {
		assert.Equal(t, `"shared"`, string(data))
	}
}

func TestInvalidateTriggersRefetchAndNotifies(t *testing.T) {
	s := newTestStore(t)
	var calls atomic.Int32
	fetch := func(context.Context) (json.RawMessage, error) {
		return json.RawMessage(`{"gen":` + string(rune('0'+calls.Add(1))) + `}`), nil
	}

	sub := s.Subscribe("k")
	defer sub.Cancel()

	_, err := s.Fetch(context.Background(), "k", []string{"Mapping"}, fetch)
	require.NoError(t, err)

	s.Invalidate("Mapping")

	select {
	case <-sub.C:
	case <-time.After(time.Second):
		t.Fatal("no invalidation signal")
	}

	data, err := s.Fetch(context.Background(), "k", []string{"Mapping"}, fetch)
	require.NoError(t, err)
	assert.JSONEq(t, `{"gen":2}`, string(data))
	assert.Equal(t, int32(2), calls.Load())
}

func TestInvalidateIgnoresOtherTags(t *testing.T) {
	s := newTestStore(t)
	var calls atomic.Int32
	fetch := func(context.Context) (json.RawMessage, error) {
		calls.Add(1)
		return json.RawMessage(`1`), nil
	}

	_, err := s.Fetch(context.Background(), "k", []string{"Wallet"}, fetch)
	require.NoError(t, err)

	s.Invalidate("Message")

	_, err = s.Fetch(context.Background(), "k", []string{"Wallet"}, fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "unrelated tag must not evict")
}

func TestSupersededFlightResultIsNotStored(t *testing.T) {
	s := newTestStore(t)
	inFlight := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	first := func(context.Context) (json.RawMessage, error) {
		calls.Add(1)
		close(inFlight)
		<-release
		return json.RawMessage(`"stale-response"`), nil
	}

	done := make(chan json.RawMessage, 1)
	go func() {
		data, _ := s.Fetch(context.Background(), "k", []string{"T"}, first)
		done <- data
	}()

	<-inFlight
	// Invalidation during the flight supersedes its generation.
	s.Invalidate("T")
	close(release)

	// The direct waiter still gets the response it asked for.
	assert.Equal(t, `"stale-response"`, string(<-done))

	// But the store refuses to keep it: the next fetch goes to the source.
	data, err := s.Fetch(context.Background(), "k", []string{"T"}, payload(`"fresh"`))
	require.NoError(t, err)
	assert.Equal(t, `"fresh"`, string(data))
	assert.Equal(t, int32(1), calls.Load())
}

func TestAddTagsAttachesAfterDecode(t *testing.T) {
	s := newTestStore(t)
	var calls atomic.Int32
	fetch := func(context.Context) (json.RawMessage, error) {
		calls.Add(1)
		return json.RawMessage(`[{"id":"a1"}]`), nil
	}

	_, err := s.Fetch(context.Background(), "list", []string{"Account:LIST"}, fetch)
	require.NoError(t, err)

	s.AddTags("list", "Account:a1")
	s.Invalidate("Account:a1")

	_, err = s.Fetch(context.Background(), "list", []string{"Account:LIST"}, fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "per-item tag must invalidate the list")
}

func TestForceRefetch(t *testing.T) {
	s := newTestStore(t)
	var calls atomic.Int32
	fetch := func(context.Context) (json.RawMessage, error) {
		calls.Add(1)
		return json.RawMessage(`1`), nil
	}

	_, _ = s.Fetch(context.Background(), "k", nil, fetch)
	s.ForceRefetch("k")
	_, _ = s.Fetch(context.Background(), "k", nil, fetch)
	assert.Equal(t, int32(2), calls.Load())
}

func TestErrorsAreCachedUntilInvalidated(t *testing.T) {
	s := newTestStore(t)
	var calls atomic.Int32
	fetch := func(context.Context) (json.RawMessage, error) {
		calls.Add(1)
		return nil, assert.AnError
	}

	_, err := s.Fetch(context.Background(), "k", []string{"T"}, fetch)
	require.ErrorIs(t, err, assert.AnError)

	// The settled error is served from cache, same as data.
	_, err = s.Fetch(context.Background(), "k", []string{"T"}, fetch)
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, int32(1), calls.Load())

	s.Invalidate("T")
	_, _ = s.Fetch(context.Background(), "k", []string{"T"}, fetch)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSweepEvictsIdleEntries(t *testing.T) {
	s := New(Options{Grace: 20 * time.Millisecond, SweepEvery: 5 * time.Millisecond})
	defer s.Close()

	_, err := s.Fetch(context.Background(), "idle", nil, payload(`1`))
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	require.Eventually(t, func() bool { return s.Len() == 0 },
		time.Second, 5*time.Millisecond, "zero-subscriber entry should be evicted after the grace period")
}

func TestSubscriberPinsEntry(t *testing.T) {
	s := New(Options{Grace: 20 * time.Millisecond, SweepEvery: 5 * time.Millisecond})
	defer s.Close()

	sub := s.Subscribe("pinned")
	_, err := s.Fetch(context.Background(), "pinned", nil, payload(`1`))
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, s.Len(), "subscribed entry must survive the sweeper")

	sub.Cancel()
	require.Eventually(t, func() bool { return s.Len() == 0 },
		time.Second, 5*time.Millisecond, "entry should be evicted after the last subscriber cancels")
}

func TestCancelIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	sub := s.Subscribe("k")
	sub.Cancel()
	sub.Cancel()

	other := s.Subscribe("k")
	defer other.Cancel()
	_, _ = s.Fetch(context.Background(), "k", nil, payload(`1`))
	assert.Equal(t, 1, s.Len())
}
