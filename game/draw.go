package game

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrExhaustedPool is returned when all 75 numbers have been drawn.
var ErrExhaustedPool = errors.New("no numbers left to draw")

// MaxNumber is the highest ball in the pool.
const MaxNumber = 75

type State string

const (
	StateIdle      State = "idle"
	StateDrawing   State = "drawing"
	StateExhausted State = "exhausted"
)

// Engine draws non-repeating numbers 1..75 for one session. Single writer:
// all mutation goes through the engine mutex, so concurrent Draw calls can
// never hand out the same number twice.
type Engine struct {
	mu        sync.Mutex
	rng       *rand.Rand
	drawn     []int
	remaining []int
	stop      chan struct{}
	playing   bool
}

// NewEngine builds an engine for a session, resuming from the numbers it has
// already drawn.
func NewEngine(alreadyDrawn []int) *Engine {
	e := &Engine{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	seen := make(map[int]bool, len(alreadyDrawn))
	for _, n := range alreadyDrawn {
		if n >= 1 && n <= MaxNumber && !seen[n] {
			seen[n] = true
			e.drawn = append(e.drawn, n)
		}
	}
	for n := 1; n <= MaxNumber; n++ {
		if !seen[n] {
			e.remaining = append(e.remaining, n)
		}
	}
	return e
}

// Draw selects one number uniformly at random from the undrawn pool and
// appends it to the drawn sequence.
func (e *Engine) Draw() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.remaining) == 0 {
		return 0, ErrExhaustedPool
	}
	i := e.rng.Intn(len(e.remaining))
	n := e.remaining[i]
	last := len(e.remaining) - 1
	e.remaining[i] = e.remaining[last]
	e.remaining = e.remaining[:last]
	e.drawn = append(e.drawn, n)
	return n, nil
}

// Preview samples up to count candidate numbers from the undrawn pool for
// display. It never mutates the drawn sequence.
func (e *Engine) Preview(count int) []int {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool := append([]int(nil), e.remaining...)
	e.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if count < len(pool) {
		pool = pool[:count]
	}
	return pool
}

// Drawn returns a copy of the drawn sequence in draw order.
func (e *Engine) Drawn() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.drawn...)
}

// RemainingCount reports how many numbers are still undrawn.
func (e *Engine) RemainingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.remaining)
}

// State reports the engine state machine position.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case len(e.remaining) == 0:
		return StateExhausted
	case e.playing:
		return StateDrawing
	default:
		return StateIdle
	}
}

// AutoPlay draws on a fixed cadence until Stop is called or the pool runs
// out, invoking onDraw after each draw. Starting while already playing is a
// no-op.
func (e *Engine) AutoPlay(interval time.Duration, onDraw func(n int)) error {
	e.mu.Lock()
	if len(e.remaining) == 0 {
		e.mu.Unlock()
		return ErrExhaustedPool
	}
	if e.playing {
		e.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	e.stop = stop
	e.playing = true
	e.mu.Unlock()

	go e.playLoop(interval, stop, onDraw)
	return nil
}

func (e *Engine) playLoop(interval time.Duration, stop chan struct{}, onDraw func(n int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// a stop racing the tick wins; the in-flight draw below still
			// completes before the loop checks again
			select {
			case <-stop:
				return
			default:
			}
			n, err := e.Draw()
			if err != nil {
				e.mu.Lock()
				e.playing = false
				e.mu.Unlock()
				return
			}
			if onDraw != nil {
				onDraw(n)
			}
		}
	}
}

// Stop cancels auto-play. Safe to call any number of times.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.playing {
		return
	}
	close(e.stop)
	e.stop = nil
	e.playing = false
}
