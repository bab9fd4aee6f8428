package gocoro

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ehrlich-b/gocoro/internal/clock"
	"github.com/ehrlich-b/gocoro/internal/timer"
)

func newTestSchedule(t *testing.T) (*Schedule, *timer.Timer, *clock.Manual) {
	t.Helper()
	mc := clock.NewManual(0)
	tm := timer.New(mc, timer.DefaultConfig())
	s := NewSchedule(context.Background(), tm, Config{})
	t.Cleanup(func() { s.Close() })
	return s, tm, mc
}

func TestTaskStart_Immediate(t *testing.T) {
	s, _, _ := newTestSchedule(t)

	ran := false
	task := NewFuncTask(func(t *Task) { ran = true })
	s.AddTask(task)

	id := task.Start(true)
	require.NotEqual(t, InvalidCoroutineID, id)
	require.True(t, ran)
	require.Equal(t, StatusDead, s.Status(id))
}

func TestTaskStart_Deferred(t *testing.T) {
	s, _, _ := newTestSchedule(t)

	ran := false
	task := NewFuncTask(func(t *Task) { ran = true })
	s.AddTask(task)

	id := task.Start(false)
	require.NotEqual(t, InvalidCoroutineID, id)
	require.False(t, ran)
	require.Equal(t, StatusReady, s.Status(id))

	require.NoError(t, s.Resume(id, 0))
	require.True(t, ran)
}

func TestTaskStart_ImmediateRefusedInsideRunningCoroutine(t *testing.T) {
	s, _, _ := newTestSchedule(t)

	var innerID int64 = -99
	outer := NewFuncTask(func(t *Task) {
		inner := NewFuncTask(func(t *Task) {})
		s.AddTask(inner)
		innerID = inner.Start(true)
	})
	s.AddTask(outer)

	outer.Start(true)
	require.Equal(t, InvalidCoroutineID, innerID)
}

func TestYield_TimeoutResumesWithErrTimeout(t *testing.T) {
	s, tm, mc := newTestSchedule(t)

	var result int32 = -1
	task := NewFuncTask(func(t *Task) {
		r, _ := t.Yield(50)
		result = r
	})
	s.AddTask(task)
	id := task.Start(true)

	require.Equal(t, StatusSuspend, s.Status(id))

	// The test drives Update() itself, standing in for the external
	// driver loop described in spec §2 (Schedule does not poll a timer
	// on its own).
	mc.Advance(50)
	fired := tm.Update()

	require.Equal(t, 1, fired)
	require.EqualValues(t, ErrTimeout, result)
	require.Equal(t, StatusDead, s.Status(id))
}

func TestYield_ExternalResumeStopsPendingTimer(t *testing.T) {
	s, tm, _ := newTestSchedule(t)

	var result int32 = -1
	task := NewFuncTask(func(t *Task) {
		r, _ := t.Yield(1000)
		result = r
	})
	s.AddTask(task)
	id := task.Start(true)
	require.Equal(t, 1, tm.Len())

	require.NoError(t, s.Resume(id, 7))
	require.EqualValues(t, 7, result)
	require.Equal(t, 0, tm.Len(), "external resume must cancel the pending wake timer")
}

func TestClose_ReturnsDestroyedCount(t *testing.T) {
	s, _, _ := newTestSchedule(t)

	pending := NewFuncTask(func(t *Task) {})
	s.AddTask(pending)

	running := NewFuncTask(func(t *Task) { t.Yield(0) })
	s.AddTask(running)
	id := running.Start(true)
	require.Equal(t, StatusSuspend, s.Status(id))

	count := s.Close()
	require.Equal(t, 2, count)
	require.Equal(t, 0, s.Size())
}

func TestClose_DestroysSuspendedCoroutineSoResumeAndStatusReportDead(t *testing.T) {
	s, _, _ := newTestSchedule(t)

	task := NewFuncTask(func(t *Task) { t.Yield(0) })
	s.AddTask(task)
	id := task.Start(true)
	require.Equal(t, StatusSuspend, s.Status(id))

	s.Close()

	require.Equal(t, StatusDead, s.Status(id))
	require.Error(t, s.Resume(id, 7))
}

func TestSize_TracksPreStartAndLiveTasks(t *testing.T) {
	s, _, _ := newTestSchedule(t)
	require.Equal(t, 0, s.Size())

	task := NewFuncTask(func(t *Task) { t.Yield(0) })
	s.AddTask(task)
	require.Equal(t, 1, s.Size())

	id := task.Start(true)
	require.Equal(t, 1, s.Size())

	require.NoError(t, s.Resume(id, 0))
	require.Equal(t, 0, s.Size())
}

func TestCurrentTask_ReflectsRunningCoroutine(t *testing.T) {
	s, _, _ := newTestSchedule(t)

	var sawSelf *Task
	task := NewFuncTask(func(t *Task) {
		sawSelf = s.CurrentTask()
	})
	s.AddTask(task)
	task.Start(true)

	require.Same(t, task, sawSelf)
	require.Nil(t, s.CurrentTask())
}

func TestPanicInTask_DoesNotWedgeScheduler(t *testing.T) {
	s, _, _ := newTestSchedule(t)

	bad := NewFuncTask(func(t *Task) { panic("task exploded") })
	s.AddTask(bad)
	id := bad.Start(true)
	require.Equal(t, StatusDead, s.Status(id))

	ran := false
	good := NewFuncTask(func(t *Task) { ran = true })
	s.AddTask(good)
	good.Start(true)
	require.True(t, ran)
}
