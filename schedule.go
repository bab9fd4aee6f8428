// Package gocoro is a cooperative in-process concurrency library: a
// stackful-style coroutine scheduler integrated with a bucketed
// sequence timer and a block-chained byte-buffer cache that task
// bodies use to stash data between yields.
package gocoro

import (
	"context"
	"errors"
	"time"

	"github.com/ehrlich-b/gocoro/internal/constants"
	"github.com/ehrlich-b/gocoro/internal/coro"
	"github.com/ehrlich-b/gocoro/internal/errcode"
	"github.com/ehrlich-b/gocoro/internal/logging"
	"github.com/ehrlich-b/gocoro/internal/timer"
)

// Status is the lifecycle state of a coroutine (spec §3).
type Status = coro.Status

const (
	StatusReady   = coro.StatusReady
	StatusRunning = coro.StatusRunning
	StatusSuspend = coro.StatusSuspend
	// StatusDead is reported for an id that is unknown to the
	// schedule (recycled, never created, or finished), matching the
	// original's coroutine_status returning COROUTINE_DEAD in that
	// case. It shares its value with the internal free/recycled
	// state, since both mean "not a live coroutine".
	StatusDead = coro.StatusFree
)

// Config tunes a Schedule (spec §4.G Schedule.Init).
type Config struct {
	// StackSize is accepted for API parity with the original's
	// per-coroutine stack allocation but otherwise unused: each
	// coroutine here runs on its own goroutine, whose stack is
	// managed and grown by the Go runtime rather than preallocated.
	StackSize int

	// MaxFreeRecycled bounds the scheduler's recycle list. Zero uses
	// the package default (MaxFreeRecycled).
	MaxFreeRecycled int

	Logger *logging.Logger

	// Observer, if set, receives Resume/Yield events as they happen.
	// Nil disables observation (the Schedule does not allocate a
	// NoOpObserver itself to avoid an interface call on every hot-path
	// Resume when nobody is watching).
	Observer Observer
}

// Schedule binds a coroutine core to an (optional) sequence timer and
// owns the set of Tasks running atop it (spec §4.G).
//
// Not safe for concurrent use: exactly one goroutine should drive a
// Schedule's Resume/Yield/Status/Close calls, per spec §5.
type Schedule struct {
	logger *logging.Logger

	coro     *coro.Schedule
	timer    *timer.Timer
	observer Observer

	preStart map[*Task]struct{}
	tasks    map[int64]*Task
}

// NewSchedule creates a Schedule. tmr may be nil, in which case
// Task.Yield's timeout_ms parameter is ignored (no timer is
// configured to drive the wake), matching the original's "if (timer_
// && timeout_ms > 0)" guard.
func NewSchedule(ctx context.Context, tmr *timer.Timer, cfg Config) *Schedule {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	maxFree := cfg.MaxFreeRecycled
	if maxFree == 0 {
		maxFree = constants.MaxFreeRecycled
	}
	cs := coro.New(ctx, coro.Config{
		MaxFreeRecycled: maxFree,
		Logger:          logger,
	})
	return &Schedule{
		logger:   logger,
		coro:     cs,
		timer:    tmr,
		observer: cfg.Observer,
		preStart: make(map[*Task]struct{}),
		tasks:    make(map[int64]*Task),
	}
}

// AddTask registers task with this schedule, placing it in the
// pre-start set until Start is called (spec §4.G
// AddTaskToSchedule).
func (s *Schedule) AddTask(t *Task) {
	t.schedule = s
	s.preStart[t] = struct{}{}
}

// Size returns the number of tasks owned by this schedule, whether
// pre-start or already running/suspended (spec §6 supplemented
// CoroutineSchedule::Size).
func (s *Schedule) Size() int {
	return len(s.preStart) + len(s.tasks)
}

// Find looks up a live (started) task by its coroutine id.
func (s *Schedule) Find(id int64) *Task {
	return s.tasks[id]
}

// CurrentTaskId returns the coroutine id of the task currently
// running on this schedule, or InvalidCoroutineID if none.
func (s *Schedule) CurrentTaskId() int64 {
	id, ok := s.coro.Running()
	if !ok {
		return InvalidCoroutineID
	}
	return id
}

// CurrentTask returns the Task currently running on this schedule, or
// nil if none (or if the running coroutine was not created via a
// Task, e.g. a raw coroutine started through internal/coro directly).
func (s *Schedule) CurrentTask() *Task {
	return s.Find(s.CurrentTaskId())
}

// Resume transfers control to the coroutine backing task id (spec
// §4.E resume, forwarded by §4.G Resume).
func (s *Schedule) Resume(id int64, result int32) error {
	start := time.Now()
	_, err := s.coro.Resume(id, result)
	if s.observer != nil {
		s.observer.ObserveResume(uint64(time.Since(start).Nanoseconds()), err == nil)
	}
	return err
}

// Status reports the lifecycle state of coroutine id.
func (s *Schedule) Status(id int64) Status {
	st, err := s.coro.Status(id)
	if err != nil {
		return StatusDead
	}
	return st
}

// Yield suspends the calling task's coroutine. If timeoutMS > 0 and
// this Schedule has a timer configured, a one-shot wake is armed
// first: when it fires, the coroutine is resumed with result
// ErrTimeout cast to int32. The timer entry is stopped again once
// Yield returns, whichever path woke it. A TimerUnexisted result from
// that Stop is swallowed, and so is any Stop error when the wake came
// from this timer itself (Update has already detached the entry and
// rejects Stop from inside its callback); see SPEC_FULL.md's resolved
// Open Question on this point (original: CoroutineSchedule::Yield).
func (s *Schedule) Yield(timeoutMS int32) (int32, error) {
	var timerID int64 = -1
	fired := false

	if s.timer != nil && timeoutMS > 0 {
		coID := s.CurrentTaskId()
		if coID == InvalidCoroutineID {
			return 0, errcode.New("Yield", errcode.CoroutineNotInCoroutine)
		}
		id, err := s.timer.StartTimer(int64(timeoutMS), func(int64) int32 {
			fired = true
			return s.onTimeout(coID)
		})
		if err != nil {
			return 0, errcode.Wrap("Yield", errcode.CoroutineStartTimerFailed, err)
		}
		timerID = id
	}

	if s.observer != nil {
		s.observer.ObserveYield()
	}
	ret, err := s.coro.Yield()
	if err != nil {
		return ret, err
	}

	if timerID >= 0 {
		if stopErr := s.timer.StopTimer(timerID); stopErr != nil && !fired &&
			!errors.Is(stopErr, errcode.New("", errcode.TimerUnexisted)) {
			s.logger.Warn("StopTimer after Yield failed", "timer_id", timerID, "err", stopErr)
		}
	}
	return ret, nil
}

// onTimeout is the timer callback armed by Yield. It resumes coID
// with ErrTimeout and always removes itself (spec §4.G: the original
// OnTimeout unconditionally returns kTIMER_BE_REMOVED regardless of
// whether the Resume it issues succeeds — a resume failure here means
// the coroutine already finished via some other path).
func (s *Schedule) onTimeout(coID int64) int32 {
	if _, err := s.coro.Resume(coID, int32(ErrTimeout)); err != nil {
		s.logger.Trace("timeout fired for a coroutine no longer resumable", "id", coID, "err", err)
	}
	return timer.Remove
}

// Close tears down the coroutine core and discards every pre-start
// and live task this schedule owns, returning the count destroyed
// (spec §4.G Close).
func (s *Schedule) Close() int {
	count := len(s.preStart) + len(s.tasks)

	s.coro.Close()
	s.timer = nil
	s.preStart = make(map[*Task]struct{})
	s.tasks = make(map[int64]*Task)

	return count
}

// doTask is the coroutine entry trampoline for every Task (spec §6
// supplemented DoTask semantics): it runs the task body, recovers and
// logs any panic so a broken task cannot wedge the scheduler's
// single-runner invariant or crash the driver goroutine, and always
// removes the task from its schedule's live set on the way out.
func doTask(_ *coro.Schedule, arg any) {
	t := arg.(*Task)
	s := t.schedule

	defer func() {
		delete(s.tasks, t.id)
		if r := recover(); r != nil {
			s.logger.Error("task panicked", "id", t.id, "panic", r)
		}
	}()

	t.body.Run(t)
}
