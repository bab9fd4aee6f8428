// Package timer implements the bucketed sequence timer (spec §3, §4.F):
// a timeout service that schedules one-shot callbacks by timeout-class,
// fires them in insertion (FIFO) order within a bucket, supports
// restart/cancel, and tolerates a callback mutating the timer set while
// Update is sweeping.
//
// Grounded on original_source/common/timer.cpp's SequenceTimer (the
// #if 0-disabled FdTimer using timerfd+epoll is the original's earlier,
// abandoned design and is not a basis for anything here).
package timer

import (
	"github.com/ehrlich-b/gocoro/internal/clock"
	"github.com/ehrlich-b/gocoro/internal/dlist"
	"github.com/ehrlich-b/gocoro/internal/errcode"
	"github.com/ehrlich-b/gocoro/internal/logging"
)

// Callback is invoked when a timer entry expires. Its return value
// selects what happens to the entry per spec §4.F:
//
//	< 0  destroy the entry
//	= 0  reinsert at tail with a fresh start time, same timeout (periodic)
//	> 0  reinsert at tail with a fresh start time and this new timeout
const (
	// Remove is a convenience alias for "destroy the entry", matching
	// the original's kTIMER_BE_REMOVED / any negative return.
	Remove int32 = -1
	// Continue is the convenience alias for "fire again after the same
	// timeout_ms".
	Continue int32 = 0
)

// Callback is the timer expiry function: (timerID) -> one of
// Remove/Continue/a positive reschedule-timeout-ms.
type Callback func(timerID int64) int32

// Config configures a Timer.
type Config struct {
	// MaxTimers bounds the number of concurrently registered timers.
	// Zero (constants.NoMaxTimers) means unbounded.
	MaxTimers int
	Logger    *logging.Logger
}

// DefaultConfig returns sensible defaults: unbounded timers, the
// package default logger.
func DefaultConfig() Config {
	return Config{MaxTimers: 0, Logger: logging.Default()}
}

type item struct {
	id          int64
	timeoutMS   int64
	startTimeMS int64
	cb          Callback
}

// Timer is a bucketed, FIFO-within-bucket, one-shot sequence timer
// (spec §3 Timer, §4.F).
//
// Not safe for concurrent use: per spec §5, a Timer is affinitized to
// exactly one driver goroutine and carries no internal locking.
type Timer struct {
	clock  clock.Clock
	logger *logging.Logger

	maxTimers  int
	nextID     int64
	items      map[int64]*dlist.Elem[*item]
	buckets    map[int64]*dlist.List[*item]
	inCallback bool
}

// New creates a Timer driven by the given Clock.
func New(c clock.Clock, cfg Config) *Timer {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Timer{
		clock:     c,
		logger:    logger,
		maxTimers: cfg.MaxTimers,
		items:     make(map[int64]*dlist.Elem[*item]),
		buckets:   make(map[int64]*dlist.List[*item]),
	}
}

// StartTimer registers a one-shot entry expiring timeoutMS after now.
func (t *Timer) StartTimer(timeoutMS int64, cb Callback) (int64, error) {
	if cb == nil || timeoutMS <= 0 {
		return -1, errcode.Newf("StartTimer", errcode.TimerInvalidParam,
			"timeout_ms=%d cb_nil=%v", timeoutMS, cb == nil)
	}
	if t.maxTimers > 0 && len(t.items) >= t.maxTimers {
		return -1, errcode.Newf("StartTimer", errcode.TimerNumOutOfRange,
			"timer count at limit %d", t.maxTimers)
	}

	id := t.nextID
	t.nextID++

	it := &item{
		id:          id,
		timeoutMS:   timeoutMS,
		startTimeMS: t.clock.NowMS(),
		cb:          cb,
	}
	elem := &dlist.Elem[*item]{Value: it}

	bucket := t.bucketFor(timeoutMS)
	bucket.PushBack(elem)
	t.items[id] = elem

	t.logger.Trace("timer started", "id", id, "timeout_ms", timeoutMS)
	return id, nil
}

// StopTimer cancels a not-yet-fired timer.
func (t *Timer) StopTimer(id int64) error {
	if t.inCallback {
		return errcode.New("StopTimer", errcode.TimerInCallback)
	}
	elem, ok := t.items[id]
	if !ok {
		return errcode.New("StopTimer", errcode.TimerUnexisted)
	}

	bucket := t.buckets[elem.Value.timeoutMS]
	bucket.Remove(elem)
	delete(t.items, id)
	t.logger.Trace("timer stopped", "id", id)
	return nil
}

// ReStartTimer rebases a timer's start time to now and moves it to the
// tail of its bucket, per spec §4.F.
func (t *Timer) ReStartTimer(id int64) error {
	if t.inCallback {
		return errcode.New("ReStartTimer", errcode.TimerInCallback)
	}
	elem, ok := t.items[id]
	if !ok {
		return errcode.New("ReStartTimer", errcode.TimerUnexisted)
	}

	bucket := t.buckets[elem.Value.timeoutMS]
	bucket.Remove(elem)
	elem.Value.startTimeMS = t.clock.NowMS()
	bucket.PushBack(elem)
	t.logger.Trace("timer restarted", "id", id)
	return nil
}

// Update processes all due entries across every bucket and returns the
// number fired. Safe to call with an empty timer set.
//
// Per spec §4.F, each bucket is walked from the head; the first item
// whose start_time+timeout_ms > now stops that bucket's sweep, since a
// bucket's items share one timeout_ms and therefore expire in the same
// order they were (re)inserted. Each expired head is detached from its
// list *before* invoking its callback, so that a callback which calls
// StartTimer (freely allowed) cannot observe or corrupt the in-progress
// sweep; Stop/ReStart are rejected for the duration via inCallback.
func (t *Timer) Update() int {
	now := t.clock.NowMS()
	t.inCallback = true
	fired := 0

	for timeoutMS, bucket := range t.buckets {
		for {
			head := bucket.Front()
			if head == nil {
				break
			}
			it := head.Value
			if it.startTimeMS+it.timeoutMS > now {
				break
			}

			bucket.Remove(head)
			delete(t.items, it.id)

			ret := it.cb(it.id)
			fired++

			switch {
			case ret < 0:
				t.logger.Trace("timer fired, removed", "id", it.id)
			case ret == 0:
				it.startTimeMS = now
				t.reinsert(it, it.timeoutMS, head)
			default:
				it.startTimeMS = now
				t.reinsert(it, int64(ret), head)
			}
		}
		_ = timeoutMS
	}

	t.inCallback = false
	return fired
}

// reinsert places it (via its detached elem) back into the bucket for
// newTimeoutMS, relocating it if the timeout changed on reschedule.
// This intentionally departs from the original C++, which mutated
// timer_item->timeout_ms in place without moving the node to the
// bucket keyed by the new value — see SPEC_FULL.md §5.3.
func (t *Timer) reinsert(it *item, newTimeoutMS int64, elem *dlist.Elem[*item]) {
	it.timeoutMS = newTimeoutMS
	bucket := t.bucketFor(newTimeoutMS)
	bucket.PushBack(elem)
	t.items[it.id] = elem
}

func (t *Timer) bucketFor(timeoutMS int64) *dlist.List[*item] {
	b, ok := t.buckets[timeoutMS]
	if !ok {
		b = dlist.New[*item]()
		t.buckets[timeoutMS] = b
	}
	return b
}

// Len returns the number of currently registered (not-yet-fired)
// timers, for diagnostics and tests.
func (t *Timer) Len() int {
	return len(t.items)
}
