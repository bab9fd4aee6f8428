// Package coro implements the stackful-style coroutine core (spec §3
// Coroutine/Schedule, §4.D, §4.E): cooperative user-level tasks that
// suspend and resume the way a stack-switching coroutine would in C,
// expressed in Go without makecontext/swapcontext.
//
// Go gives every goroutine its own OS-managed, growable stack but no
// way to pause one mid-call and jump into another from the outside.
// This package gets the same cooperative-suspend behavior the spec
// calls for by running each coroutine body on its own goroutine and
// handing control back and forth over a pair of unbuffered "baton"
// channels: Resume sends on resumeCh and blocks receiving from
// yieldCh; the coroutine's goroutine blocks receiving from resumeCh
// until handed the baton, runs until it calls Yield (or returns), then
// sends on yieldCh and blocks again. Because both channels are
// unbuffered, at most one side is ever running — the single-runner
// invariant the original enforces via one OS thread and an explicit
// context switch falls out here for free from channel rendezvous.
//
// Grounded on the teacher's queue.Runner (internal/queue/runner.go):
// one long-lived goroutine per unit of work, a Config struct, and a
// context.Context carried for cancellation.
package coro

import (
	"context"
	"fmt"

	"github.com/ehrlich-b/gocoro/internal/errcode"
	"github.com/ehrlich-b/gocoro/internal/logging"
)

// Status mirrors the original's coroutine status enum (spec §3).
type Status int32

const (
	StatusFree Status = iota
	StatusReady
	StatusRunning
	StatusSuspend
)

func (s Status) String() string {
	switch s {
	case StatusFree:
		return "FREE"
	case StatusReady:
		return "READY"
	case StatusRunning:
		return "RUNNING"
	case StatusSuspend:
		return "SUSPEND"
	default:
		return fmt.Sprintf("STATUS(%d)", int32(s))
	}
}

// Func is a coroutine body. arg is the value passed to NewCoroutine.
// Func returns nothing; when it returns, the coroutine moves to
// StatusFree (spec §4.E: no result channel, matching the original's
// void entry point).
type Func func(s *Schedule, arg any)

// signal carries a yield/finish reason across the baton channel so the
// receiving side (Resume) can distinguish a cooperative Yield from a
// natural return without a second channel.
type signal int32

const (
	signalYielded signal = iota
	signalFinished
	signalPanicked
)

type coroutine struct {
	id     int64
	status Status
	fn     Func
	arg    any

	resumeCh chan int32
	yieldCh  chan signal

	panicVal any
	started  bool
}

// Config tunes a Schedule.
type Config struct {
	// MaxFreeRecycled bounds how many finished coroutines are kept on
	// the recycle list for reuse by NewCoroutine, rather than left for the
	// garbage collector. Spec §4.E / constants.MaxFreeRecycled.
	MaxFreeRecycled int
	Logger          *logging.Logger
}

// Schedule owns a set of coroutines and tracks which one (if any) is
// currently running, so that Yield can be called without the
// coroutine needing to pass its own handle around (spec §4.E
// "coroutine_running").
//
// Not safe for concurrent use: per spec §5 a Schedule is driven by
// exactly one OS thread (here, the goroutine that calls Resume).
type Schedule struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *logging.Logger

	maxFree int
	nextID  int64

	coros   map[int64]*coroutine
	running *coroutine
	free    []*coroutine
}

// New creates an empty Schedule. The returned Schedule's goroutines
// are torn down by Close; ctx additionally cancels every in-flight
// coroutine body if it is ever used to block (e.g. via a channel
// select), matching the teacher's context-carried-for-cancellation
// idiom.
func New(ctx context.Context, cfg Config) *Schedule {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	cctx, cancel := context.WithCancel(ctx)
	return &Schedule{
		ctx:     cctx,
		cancel:  cancel,
		logger:  logger,
		maxFree: cfg.MaxFreeRecycled,
		coros:   make(map[int64]*coroutine),
	}
}

// Context returns the Schedule's cancellation context, so a coroutine
// body can select on ctx.Done() alongside its own blocking work.
func (s *Schedule) Context() context.Context {
	return s.ctx
}

// NewCoroutine creates a new coroutine running fn(s, arg), reusing a
// recycled coroutine record and its channel pair from the free list
// when one is available (spec §4.E create-reuses-recycled-slot
// behavior), and returns its id in StatusReady. The body always runs
// on a fresh goroutine, started by the first Resume.
func (s *Schedule) NewCoroutine(fn Func, arg any) (int64, error) {
	if fn == nil {
		return -1, errcode.New("NewCoroutine", errcode.CoroutineInvalidParam)
	}

	var c *coroutine
	recycled := false
	if n := len(s.free); n > 0 {
		c = s.free[n-1]
		s.free = s.free[:n-1]
		recycled = true
	} else {
		c = &coroutine{
			resumeCh: make(chan int32),
			yieldCh:  make(chan signal),
		}
	}

	c.id = s.nextID
	s.nextID++
	c.fn = fn
	c.arg = arg
	c.status = StatusReady
	c.started = false
	c.panicVal = nil

	s.coros[c.id] = c
	s.logger.Trace("coroutine created", "id", c.id, "recycled", recycled)
	return c.id, nil
}

// Resume transfers control to coroutine id until it yields, finishes,
// or panics. val is delivered to the pending Yield call inside the
// coroutine (ignored on the coroutine's first resume). It returns the
// coroutine's status after this resume: StatusSuspend if it yielded
// again, StatusFree if it ran to completion.
func (s *Schedule) Resume(id int64, val int32) (Status, error) {
	if s.running != nil {
		return StatusFree, errcode.New("Resume", errcode.CoroutineCannotResumeInCoroutine)
	}
	c, ok := s.coros[id]
	if !ok {
		return StatusFree, errcode.New("Resume", errcode.CoroutineUnexist)
	}
	if c.status != StatusReady && c.status != StatusSuspend {
		return StatusFree, errcode.Newf("Resume", errcode.CoroutineStatusError,
			"id=%d status=%s", id, c.status)
	}

	if !c.started {
		c.started = true
		go s.run(c)
	}

	c.status = StatusRunning
	s.running = c

	c.resumeCh <- val
	sig := <-c.yieldCh

	s.running = nil

	switch sig {
	case signalYielded:
		c.status = StatusSuspend
		s.logger.Trace("coroutine yielded", "id", id)
		return StatusSuspend, nil
	case signalPanicked:
		c.status = StatusFree
		s.retire(c)
		return StatusFree, errcode.Newf("Resume", errcode.CoroutineStatusError,
			"id=%d panicked: %v", id, c.panicVal)
	default:
		c.status = StatusFree
		s.retire(c)
		s.logger.Trace("coroutine finished", "id", id)
		return StatusFree, nil
	}
}

// run is the coroutine's goroutine body. It blocks for its first
// baton before touching fn, so NewCoroutine's goroutine spawn and the
// first Resume can race freely.
func (s *Schedule) run(c *coroutine) {
	<-c.resumeCh

	defer func() {
		if r := recover(); r != nil {
			c.panicVal = r
			c.yieldCh <- signalPanicked
			return
		}
	}()

	c.fn(s, c.arg)
	c.yieldCh <- signalFinished
}

// Yield suspends the calling coroutine, handing control back to
// whoever called Resume, and blocks until the next Resume delivers a
// value. It must be called from inside a coroutine body (i.e. with
// this Schedule's s.running set); calling it from outside one is an
// error matching the original's kCO_NOT_IN_COROUTINE.
func (s *Schedule) Yield() (int32, error) {
	c := s.running
	if c == nil {
		return 0, errcode.New("Yield", errcode.CoroutineNotInCoroutine)
	}

	c.yieldCh <- signalYielded
	val := <-c.resumeCh
	return val, nil
}

// Status returns the current status of coroutine id.
func (s *Schedule) Status(id int64) (Status, error) {
	c, ok := s.coros[id]
	if !ok {
		return StatusFree, errcode.New("Status", errcode.CoroutineUnexist)
	}
	return c.status, nil
}

// Running returns the id of the coroutine currently executing under
// this Schedule, and false if none is (spec §4.E "coroutine_running").
func (s *Schedule) Running() (int64, bool) {
	if s.running == nil {
		return 0, false
	}
	return s.running.id, true
}

// Size returns the number of live (non-recycled) coroutines tracked by
// this Schedule.
func (s *Schedule) Size() int {
	return len(s.coros)
}

// retire removes a finished coroutine from the live set and, space
// permitting, pushes its record and channel pair onto the free list for
// NewCoroutine to reuse (spec §4.E, constants.MaxFreeRecycled). Its
// goroutine has already exited by this point.
func (s *Schedule) retire(c *coroutine) {
	delete(s.coros, c.id)
	if len(s.free) >= s.maxFree {
		return
	}
	s.free = append(s.free, c)
}

// Close destroys every coroutine this Schedule knows about, live or
// recycled (spec line 80 "close(S) destroys all live + recycled
// coroutines, frees S"; line 161 "Closing the schedule destroys every
// live coroutine regardless of status"), then cancels the Schedule's
// context. After Close, Status reports every previously-known id as
// StatusFree and Resume refuses with CoroutineUnexist, satisfying
// invariant #2 (every coroutine is exactly one of {live, recycled,
// destroyed} — never still-resumable after the schedule that owned it
// is gone).
//
// Any coroutine body still blocked on resumeCh (never resumed to
// completion) is left as an abandoned goroutine parked there forever;
// callers are expected to Resume every coroutine to completion (or
// have coroutine bodies watch Context().Done()) rather than rely on
// Close to unwind a running stack, mirroring the original's lack of a
// destructor that force-unwinds running stacks.
func (s *Schedule) Close() {
	for id := range s.coros {
		delete(s.coros, id)
	}
	s.free = nil
	s.running = nil
	s.cancel()
}
