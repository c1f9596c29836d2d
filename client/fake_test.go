package client

import (
	"context"
	"sync"

	"github.com/smnsjas/go-wps/model"
	"github.com/smnsjas/go-wps/protocol"
)

// fakeProtocol is an in-memory protocol.Protocol.
type fakeProtocol struct {
	mu sync.Mutex

	descs        map[string]*model.ProcessDescription
	describeErr  error
	describeArgs [][]string

	executeResp *protocol.ExecuteResponse
	executed    []protocol.ExecuteRequest

	// statuses are returned by successive GetStatus calls; the last one
	// repeats.
	statuses  []model.StatusInfo
	statusErr error
	polls     int

	result      *model.Result
	resultCalls int
	// resultGate, when set, holds every GetResult until it is closed.
	resultGate chan struct{}
}

var _ protocol.Protocol = (*fakeProtocol)(nil)

func (f *fakeProtocol) Version() protocol.Version {
	return protocol.V20
}

func (f *fakeProtocol) DescribeProcess(_ context.Context, ids ...string) ([]*model.ProcessDescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.describeArgs = append(f.describeArgs, ids)
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	var out []*model.ProcessDescription
	if len(ids) == 0 {
		for _, d := range f.descs {
			out = append(out, d)
		}
		return out, nil
	}
	for _, id := range ids {
		if d, ok := f.descs[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeProtocol) Execute(_ context.Context, req protocol.ExecuteRequest) (*protocol.ExecuteResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, req)
	return f.executeResp, nil
}

func (f *fakeProtocol) GetStatus(_ context.Context, jobID string) (*model.StatusInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	info := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	info.JobID = jobID
	return &info, nil
}

func (f *fakeProtocol) GetResult(_ context.Context, jobID string) (*model.Result, error) {
	f.mu.Lock()
	f.resultCalls++
	r := *f.result
	gate := f.resultGate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	r.JobID = jobID
	return &r, nil
}

func (f *fakeProtocol) resultCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resultCalls
}

func (f *fakeProtocol) describeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.describeArgs)
}

func testDescription(id string, inputs []string, outputs []string) *model.ProcessDescription {
	var ins []model.InputDescription
	for _, in := range inputs {
		ins = append(ins, model.InputDescription{Identification: model.Identification{ID: in}})
	}
	var outs []model.OutputDescription
	for _, out := range outputs {
		outs = append(outs, model.OutputDescription{Identification: model.Identification{ID: out}})
	}
	summary := model.ProcessSummary{Identification: model.Identification{ID: id}}
	return model.NewProcessDescription(summary, "en", ins, outs)
}

// statusRecorder is a JobObserver that keeps every status.
type statusRecorder struct {
	mu       sync.Mutex
	statuses []model.Status
}

func (r *statusRecorder) ObserveJobStatus(s model.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *statusRecorder) seen() []model.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Status(nil), r.statuses...)
}
