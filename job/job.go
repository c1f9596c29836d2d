// Package job tracks one asynchronous WPS execution.
//
// A Job is a single-resolution future. The protocol layer feeds it status
// snapshots with Update; a caller that observes Succeeded fetches the
// result and attaches it with SetResult, which closes the Done channel
// exactly once. A Failed job is never resolved: callers inspect Status.
//
// A Job performs no I/O and has no timers. Polling cadence, including the
// server's NextPoll hint, is the caller's responsibility.
package job

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/smnsjas/go-wps/model"
)

// ErrNilResult is the cause when SetResult is called with nil.
var ErrNilResult = errors.New("nil result")

// Job is the mutable record of one execution. It is safe for concurrent
// use.
type Job struct {
	mu     sync.Mutex
	id     string
	info   model.StatusInfo
	result *model.Result
	done   chan struct{}
}

// New creates a job from its first status snapshot.
func New(id string, info model.StatusInfo) *Job {
	info.JobID = id
	return &Job{
		id:   id,
		info: info,
		done: make(chan struct{}),
	}
}

// ID returns the server-assigned job identifier.
func (j *Job) ID() string {
	return j.id
}

// Status returns the latest known status.
func (j *Job) Status() model.Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.info.Status
}

// Info returns a copy of the latest status snapshot.
func (j *Job) Info() model.StatusInfo {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.info
}

// NextPoll returns the server's suggested time for the next poll, or the
// zero time when none was given.
func (j *Job) NextPoll() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.info.NextPoll
}

// IsCompleted reports whether the latest status is Succeeded or Failed.
// Paused is not completed.
func (j *Job) IsCompleted() bool {
	return j.Status().IsCompleted()
}

// Update replaces the status snapshot. A snapshot for another job, or one
// that would move a completed job to a different status, is rejected with
// a *model.StateError and leaves the job unchanged.
func (j *Job) Update(info model.StatusInfo) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if info.JobID != "" && info.JobID != j.id {
		return &model.StateError{Op: "Update", ID: j.id, Err: model.ErrJobMismatch}
	}
	if j.info.Status.IsCompleted() && info.Status != j.info.Status {
		return &model.StateError{Op: "Update", ID: j.id, Err: model.ErrInvalidTransition}
	}
	info.JobID = j.id
	j.info = info
	return nil
}

// SetResult attaches the terminal result and resolves the job. It never
// changes the status; only Update does. It succeeds at most once; later
// calls return a *model.StateError wrapping model.ErrResultAlreadySet and
// keep the first result. A Failed job cannot be resolved.
func (j *Job) SetResult(r *model.Result) error {
	if r == nil {
		return &model.StateError{Op: "SetResult", ID: j.id, Err: ErrNilResult}
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.result != nil {
		return &model.StateError{Op: "SetResult", ID: j.id, Err: model.ErrResultAlreadySet}
	}
	if j.info.Status == model.StatusFailed {
		return &model.StateError{Op: "SetResult", ID: j.id, Err: model.ErrInvalidTransition}
	}
	if r.JobID != "" && r.JobID != j.id {
		return &model.StateError{Op: "SetResult", ID: j.id, Err: model.ErrJobMismatch}
	}

	j.result = r
	close(j.done)
	return nil
}

// Result returns the attached result, if any.
func (j *Job) Result() (*model.Result, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result, j.result != nil
}

// Done returns a channel that is closed when the result is attached.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the result is attached or ctx ends.
func (j *Job) Wait(ctx context.Context) (*model.Result, error) {
	select {
	case <-j.done:
		r, _ := j.Result()
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
