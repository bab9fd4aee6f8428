package gocoro

// InvalidCoroutineID is the sentinel returned by CurrentTaskId and
// Task.ID when no task is bound to a running coroutine (spec §4.G,
// original_source's INVALID_CO_ID / coroutine_running's −1).
const InvalidCoroutineID int64 = -1

// Runnable is implemented by user task bodies. Run executes atop a
// coroutine owned by the Schedule the Task was added to; it may call
// Task.Yield to suspend.
//
// This is the Go-idiomatic stand-in for the original's subclassable
// CoroutineTask: rather than overriding a virtual Run(), callers embed
// *Task and implement Run on the embedding type, or use NewFuncTask
// for a plain closure body.
type Runnable interface {
	Run(t *Task)
}

// Task is a user unit of work that runs inside a coroutine once
// started (spec §4.G). A Task is owned by exactly one Schedule from
// the moment it is passed to AddTask.
type Task struct {
	id       int64
	schedule *Schedule
	body     Runnable
}

// NewTask wraps body as a schedulable Task.
func NewTask(body Runnable) *Task {
	return &Task{id: InvalidCoroutineID, body: body}
}

// funcTask adapts a plain func(*Task) into a Runnable, for callers who
// don't want to define a named type just to implement Run.
type funcTask func(t *Task)

func (f funcTask) Run(t *Task) { f(t) }

// NewFuncTask wraps a plain function as a Task body.
func NewFuncTask(fn func(t *Task)) *Task {
	return NewTask(funcTask(fn))
}

// ID returns the task's coroutine id, or InvalidCoroutineID before
// Start has been called.
func (t *Task) ID() int64 {
	return t.id
}

// Schedule returns the Schedule this task is bound to.
func (t *Task) Schedule() *Schedule {
	return t.schedule
}

// Start allocates a coroutine running this task's body and moves the
// task from the schedule's pre-start set into its live set (spec
// §4.G). If immediate is true and a coroutine is already running on
// this Schedule, Start refuses (a task may not synchronously resume
// itself or a sibling from inside a running coroutine) and returns
// InvalidCoroutineID.
//
// If immediate is true and no coroutine is running, the new
// coroutine is resumed synchronously before Start returns.
func (t *Task) Start(immediate bool) int64 {
	s := t.schedule
	if immediate && s.CurrentTaskId() != InvalidCoroutineID {
		delete(s.preStart, t)
		return InvalidCoroutineID
	}

	id, err := s.coro.NewCoroutine(doTask, t)
	if err != nil {
		delete(s.preStart, t)
		return InvalidCoroutineID
	}

	t.id = id
	s.tasks[id] = t
	delete(s.preStart, t)

	if immediate {
		if _, err := s.coro.Resume(id, 0); err != nil {
			return InvalidCoroutineID
		}
	}
	return id
}

// Yield suspends the task's coroutine, optionally scheduling a
// timeout-driven wake (spec §4.G). See Schedule.Yield.
func (t *Task) Yield(timeoutMS int32) (int32, error) {
	return t.schedule.Yield(timeoutMS)
}
