package model

import (
	"strings"
	"time"
)

// Status is a job status as reported by the server.
type Status string

// Known job statuses. Unknown values reported by a server are carried
// verbatim and are never completed.
const (
	StatusAccepted  Status = "Accepted"
	StatusRunning   Status = "Running"
	StatusPaused    Status = "Paused"
	StatusSucceeded Status = "Succeeded"
	StatusFailed    Status = "Failed"
)

// ParseStatus normalizes a wire status. Both "Succeeded" and the
// misspelling "Succeded" map to StatusSucceeded.
func ParseStatus(s string) Status {
	s = strings.TrimSpace(s)
	switch s {
	case "Succeeded", "Succeded":
		return StatusSucceeded
	case "Accepted":
		return StatusAccepted
	case "Running":
		return StatusRunning
	case "Paused":
		return StatusPaused
	case "Failed":
		return StatusFailed
	}
	return Status(s)
}

// String returns the status name.
func (s Status) String() string {
	return string(s)
}

// IsCompleted reports whether s is terminal. Paused is not terminal.
func (s Status) IsCompleted() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// StatusInfo is one decoded status snapshot of a job. Zero times mean the
// server did not declare the value.
type StatusInfo struct {
	JobID  string `json:"jobId" yaml:"jobId"`
	Status Status `json:"status" yaml:"status"`

	ExpirationDate      time.Time `json:"expirationDate,omitzero" yaml:"expirationDate,omitempty"`
	EstimatedCompletion time.Time `json:"estimatedCompletion,omitzero" yaml:"estimatedCompletion,omitempty"`
	NextPoll            time.Time `json:"nextPoll,omitzero" yaml:"nextPoll,omitempty"`

	// PercentCompleted is nil when not reported.
	PercentCompleted *int `json:"percentCompleted,omitempty" yaml:"percentCompleted,omitempty"`

	// StatusLocation is the WPS 1.0 status document URL.
	StatusLocation string `json:"statusLocation,omitempty" yaml:"statusLocation,omitempty"`
}

// IsCompleted reports whether the snapshot status is terminal.
func (s StatusInfo) IsCompleted() bool {
	return s.Status.IsCompleted()
}
