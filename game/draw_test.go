package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawExhaustsAfter75(t *testing.T) {
	e := NewEngine(nil)

	seen := make(map[int]bool)
	for i := 0; i < MaxNumber; i++ {
		n, err := e.Draw()
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, MaxNumber)
		require.False(t, seen[n], "number %d drawn twice", n)
		seen[n] = true
	}

	_, err := e.Draw()
	assert.ErrorIs(t, err, ErrExhaustedPool)
	assert.Equal(t, StateExhausted, e.State())
	assert.Len(t, e.Drawn(), MaxNumber)
}

func TestEngineResumesFromDrawnNumbers(t *testing.T) {
	e := NewEngine([]int{7, 13, 42})
	assert.Equal(t, MaxNumber-3, e.RemainingCount())

	for i := 0; i < MaxNumber-3; i++ {
		n, err := e.Draw()
		require.NoError(t, err)
		require.NotContains(t, []int{7, 13, 42}, n)
	}
	_, err := e.Draw()
	assert.ErrorIs(t, err, ErrExhaustedPool)
}

func TestPreviewDoesNotMutate(t *testing.T) {
	e := NewEngine([]int{1, 2, 3})

	before := e.Drawn()
	sample := e.Preview(10)

	assert.Len(t, sample, 10)
	assert.Equal(t, before, e.Drawn())
	assert.Equal(t, MaxNumber-3, e.RemainingCount())
	for _, n := range sample {
		assert.NotContains(t, before, n, "preview only samples undrawn numbers")
	}
}

func TestPreviewClampsToPool(t *testing.T) {
	drawn := make([]int, 0, MaxNumber-2)
	for n := 1; n <= MaxNumber-2; n++ {
		drawn = append(drawn, n)
	}
	e := NewEngine(drawn)
	assert.Len(t, e.Preview(10), 2)
}

func TestConcurrentDrawsNeverRepeat(t *testing.T) {
	e := NewEngine(nil)

	var mu sync.Mutex
	results := make([]int, 0, MaxNumber)
	var wg sync.WaitGroup
	for i := 0; i < MaxNumber; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := e.Draw()
			if err != nil {
				return
			}
			mu.Lock()
			results = append(results, n)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, results, MaxNumber)
	seen := make(map[int]bool)
	for _, n := range results {
		require.False(t, seen[n], "number %d drawn twice", n)
		seen[n] = true
	}
}

func TestAutoPlayDrawsUntilStopped(t *testing.T) {
	e := NewEngine(nil)

	drawn := make(chan int, MaxNumber)
	err := e.AutoPlay(time.Millisecond, func(n int) { drawn <- n })
	require.NoError(t, err)

	// wait for a few draws
	for i := 0; i < 3; i++ {
		select {
		case <-drawn:
		case <-time.After(time.Second):
			t.Fatal("auto play produced no draws")
		}
	}

	e.Stop()
	e.Stop() // stopping twice is a no-op

	// drain anything in flight, then confirm nothing more arrives
	time.Sleep(20 * time.Millisecond)
	for len(drawn) > 0 {
		<-drawn
	}
	select {
	case n := <-drawn:
		t.Fatalf("draw %d after stop", n)
	case <-time.After(20 * time.Millisecond):
	}

	assert.Equal(t, StateIdle, e.State())
}

func TestAutoPlayStopsOnExhaustion(t *testing.T) {
	drawn := make([]int, 0, MaxNumber-1)
	for n := 1; n < MaxNumber; n++ {
		drawn = append(drawn, n)
	}
	e := NewEngine(drawn) // one number left

	got := make(chan int, 1)
	require.NoError(t, e.AutoPlay(time.Millisecond, func(n int) { got <- n }))

	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("expected the last number")
	}

	assert.Eventually(t, func() bool { return e.State() == StateExhausted },
		time.Second, 5*time.Millisecond)

	// a fresh auto play on an exhausted pool refuses to start
	assert.ErrorIs(t, e.AutoPlay(time.Millisecond, nil), ErrExhaustedPool)
}

func TestStopWithoutAutoPlay(t *testing.T) {
	e := NewEngine(nil)
	e.Stop() // no-op
	n, err := e.Draw()
	require.NoError(t, err)
	assert.Contains(t, e.Drawn(), n)
}
