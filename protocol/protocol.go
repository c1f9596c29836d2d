package protocol

import (
	"context"

	"github.com/smnsjas/go-wps/job"
	"github.com/smnsjas/go-wps/model"
)

// ExecuteRequest is a version-independent Execute call.
type ExecuteRequest struct {
	ProcessID string
	Inputs    []model.Input
	Outputs   []model.OutputRequest

	// Async requests asynchronous execution; the response is then a job.
	Async bool

	// Raw requests the raw output payload instead of a result document.
	Raw bool
}

// RawOutput is a non-XML synchronous response returned verbatim.
type RawOutput struct {
	ContentType string
	Body        []byte
}

// ResponseKind identifies which field of an ExecuteResponse is set.
type ResponseKind int

const (
	// ResponseResult is a terminal result document.
	ResponseResult ResponseKind = iota + 1
	// ResponseJob is a status document wrapped in a job.
	ResponseJob
	// ResponseRaw is a raw payload.
	ResponseRaw
)

// String returns the kind name.
func (k ResponseKind) String() string {
	switch k {
	case ResponseResult:
		return "Result"
	case ResponseJob:
		return "Job"
	case ResponseRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// ExecuteResponse is the classified outcome of Execute. Exactly one field
// is set.
type ExecuteResponse struct {
	Result *model.Result
	Job    *job.Job
	Raw    *RawOutput
}

// Kind reports which field is set.
func (r *ExecuteResponse) Kind() ResponseKind {
	switch {
	case r.Job != nil:
		return ResponseJob
	case r.Result != nil:
		return ResponseResult
	case r.Raw != nil:
		return ResponseRaw
	}
	return 0
}

// Protocol is one wire version's request orchestration. Every operation is
// a single round trip; failures propagate unchanged and nothing is retried.
type Protocol interface {
	// Version reports the wire version spoken.
	Version() Version

	// DescribeProcess fetches descriptions for ids, or for every process
	// when ids is empty.
	DescribeProcess(ctx context.Context, ids ...string) ([]*model.ProcessDescription, error)

	// Execute submits an execution request and classifies the response.
	Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResponse, error)

	// GetStatus polls a job.
	GetStatus(ctx context.Context, jobID string) (*model.StatusInfo, error)

	// GetResult fetches the result of a succeeded job.
	GetResult(ctx context.Context, jobID string) (*model.Result, error)
}

// Codec is one wire version's pure encoders and decoders.
type Codec interface {
	Version() Version

	DecodeCapabilities(data []byte) (*model.Capabilities, error)
	DecodeProcessDescriptions(data []byte) ([]*model.ProcessDescription, error)
	DecodeStatusInfo(data []byte) (*model.StatusInfo, error)
	DecodeResult(data []byte) (*model.Result, error)

	EncodeDescribeProcess(ids []string, xmlBody bool) (string, error)
	EncodeExecute(req ExecuteRequest) (string, error)
	EncodeGetStatus(jobID string, xmlBody bool) (string, error)
	EncodeGetResult(jobID string, xmlBody bool) (string, error)
}
