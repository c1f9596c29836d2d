package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smnsjas/go-wps/job"
	"github.com/smnsjas/go-wps/model"
)

func fastPolicy() PollPolicy {
	return PollPolicy{
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
		MinInterval:  time.Millisecond,
	}
}

func TestPollBackoff(t *testing.T) {
	policy := PollPolicy{InitialDelay: time.Second, MaxDelay: 10 * time.Second, Multiplier: 2.0}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second},
		{100, 10 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pollBackoff(tt.attempt, policy), "attempt %d", tt.attempt)
	}
}

func TestPollBackoff_Defaults(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, pollBackoff(1, PollPolicy{}))
	assert.Equal(t, 200*time.Millisecond, pollBackoff(2, PollPolicy{Multiplier: 0.5}))
}

func TestNextDelay_HonorsNextPoll(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := DefaultPollPolicy()

	j := job.New("j", model.StatusInfo{Status: model.StatusRunning, NextPoll: now.Add(7 * time.Second)})
	assert.Equal(t, 7*time.Second, nextDelay(j, 3, policy, now))

	past := job.New("j", model.StatusInfo{Status: model.StatusRunning, NextPoll: now.Add(-time.Second)})
	assert.Equal(t, 4*time.Second, nextDelay(past, 3, policy, now))

	none := job.New("j", model.StatusInfo{Status: model.StatusRunning})
	assert.Equal(t, time.Second, nextDelay(none, 1, policy, now))
}

func TestAwait_Succeeds(t *testing.T) {
	svc, fp := newFakeService(nil)
	rec := &statusRecorder{}
	svc.jobObserver = rec
	fp.statuses = []model.StatusInfo{
		{Status: model.StatusRunning},
		{Status: model.StatusPaused},
		{Status: model.StatusSucceeded},
	}
	fp.result = &model.Result{Outputs: []model.Output{{ID: "result", Reference: "http://x/out"}}}

	j := job.New("job-1", model.StatusInfo{Status: model.StatusAccepted})
	r, err := svc.Await(context.Background(), j, fastPolicy())
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "job-1", r.JobID)
	assert.Equal(t, 3, fp.polls)
	assert.Equal(t, []model.Status{model.StatusRunning, model.StatusPaused, model.StatusSucceeded}, rec.seen())

	got, err := j.Wait(context.Background())
	require.NoError(t, err)
	assert.Same(t, r, got)
}

func TestAwait_AlreadySucceeded(t *testing.T) {
	svc, fp := newFakeService(nil)
	fp.result = &model.Result{}

	j := job.New("job-1", model.StatusInfo{Status: model.StatusSucceeded})
	_, err := svc.Await(context.Background(), j, fastPolicy())
	require.NoError(t, err)
	assert.Zero(t, fp.polls)
	assert.Equal(t, 1, fp.resultCalls)
}

func TestAwait_Failed(t *testing.T) {
	svc, fp := newFakeService(nil)
	fp.statuses = []model.StatusInfo{{Status: model.StatusFailed}}

	j := job.New("job-1", model.StatusInfo{Status: model.StatusRunning})
	_, err := svc.Await(context.Background(), j, fastPolicy())
	assert.ErrorIs(t, err, ErrJobFailed)
	assert.Zero(t, fp.resultCalls)
	assert.Equal(t, model.StatusFailed, j.Status())
}

func TestAwait_PollErrorStops(t *testing.T) {
	svc, fp := newFakeService(nil)
	boom := errors.New("boom")
	fp.statusErr = boom

	j := job.New("job-1", model.StatusInfo{Status: model.StatusRunning})
	_, err := svc.Await(context.Background(), j, fastPolicy())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, fp.polls)
}

func TestAwait_ContextCancelled(t *testing.T) {
	svc, fp := newFakeService(nil)
	fp.statuses = []model.StatusInfo{{Status: model.StatusRunning}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	j := job.New("job-1", model.StatusInfo{Status: model.StatusAccepted})
	_, err := svc.Await(ctx, j, fastPolicy())
	require.Error(t, err)
	assert.False(t, j.IsCompleted())
}
