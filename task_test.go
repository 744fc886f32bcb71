package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTask_NewTask_StartsInStateNew(t *testing.T) {
	task := NewTask()

	require.Equal(t, StateNew, task.State())
	require.False(t, task.Success())
	require.NoError(t, task.Err())
}

func TestTask_MarkScheduled_FromNew_Succeeds(t *testing.T) {
	task := NewTask()

	require.NoError(t, task.markScheduled())
	require.Equal(t, StateScheduled, task.State())
}

func TestTask_MarkScheduled_WhileAlreadyScheduled_ReturnsErrAlreadyScheduled(t *testing.T) {
	task := NewTask()
	require.NoError(t, task.markScheduled())

	err := task.markScheduled()
	require.ErrorIs(t, err, ErrAlreadyScheduled)
}

func TestTask_MarkScheduled_AfterFinished_Succeeds(t *testing.T) {
	task := NewTask()
	require.NoError(t, task.markScheduled())
	task.finish(true, nil)

	require.NoError(t, task.markScheduled())
}

func TestTask_Finish_Success_RecordsNoError(t *testing.T) {
	task := NewTask()
	require.NoError(t, task.markScheduled())

	task.finish(true, nil)

	require.Equal(t, StateFinished, task.State())
	require.True(t, task.Success())
	require.NoError(t, task.Err())
}

func TestTask_Finish_Failure_RecordsError(t *testing.T) {
	task := NewTask()
	require.NoError(t, task.markScheduled())
	want := errors.New("boom")

	task.finish(false, want)

	require.False(t, task.Success())
	require.ErrorIs(t, task.Err(), want)
}

func TestTask_Finish_InvokesHandlerAfterStoringFinished(t *testing.T) {
	task := NewTask()
	require.NoError(t, task.markScheduled())

	var handlerSawFinished bool
	task.handler = func(tt *Task) {
		handlerSawFinished = tt.State() == StateFinished
	}

	task.finish(true, nil)

	require.True(t, handlerSawFinished)
}

func TestState_String_CoversAllStates(t *testing.T) {
	require.Equal(t, "NEW", StateNew.String())
	require.Equal(t, "SCHEDULED", StateScheduled.String())
	require.Equal(t, "FINISHED", StateFinished.String())
	require.Equal(t, "UNKNOWN", State(99).String())
}
