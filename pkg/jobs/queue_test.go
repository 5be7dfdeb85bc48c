package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueRequiresStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	err := q.Enqueue(Job{ID: "j1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not started")
}

func TestQueueDispatchesSerially(t *testing.T) {
	seen := make(chan string, 2)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		seen <- job.ID
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 2})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "first"}))
	require.NoError(t, q.Enqueue(Job{ID: "second"}))

	assert.Equal(t, "first", <-seen)
	assert.Equal(t, "second", <-seen)
}

func TestFailedJobIsNotRetried(t *testing.T) {
	calls := make(chan struct{}, 4)
	q := NewQueue("test", func(context.Context, Job) error {
		calls <- struct{}{}
		return errors.New("workspace half wiped")
	}, QueueConfig{})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "doomed"}))
	<-calls

	select {
	case <-calls:
		t.Fatal("job ran again after failing")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStopWithoutStartIsNoOp(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	q.Stop()
}
