package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/smnsjas/go-wps/job"
	"github.com/smnsjas/go-wps/model"
	"github.com/smnsjas/go-wps/protocol"
)

// describeConcurrency bounds parallel DescribeProcess requests issued by
// DescribeAll.
const describeConcurrency = 4

// JobObserver is told about every job status a Service observes.
type JobObserver interface {
	ObserveJobStatus(status model.Status)
}

// ExecuteOptions selects the execution mode.
type ExecuteOptions struct {
	// Async requests asynchronous execution. The response then carries a
	// Job.
	Async bool

	// Raw requests the raw output payload instead of a result document.
	Raw bool
}

// Service is a discovered WPS service: its capabilities and the protocol
// selected for its version. It is safe for concurrent use.
//
// Process descriptions are memoized by identifier. Two concurrent lookups
// of the same unknown identifier may both hit the server; the later
// response overwrites the earlier one.
type Service struct {
	caps   *model.Capabilities
	proto  protocol.Protocol
	logger *slog.Logger

	jobObserver JobObserver

	mu           sync.Mutex
	descriptions map[string]*model.ProcessDescription
}

// NewService wraps already discovered capabilities and a protocol. A nil
// logger discards logs.
func NewService(caps *model.Capabilities, proto protocol.Protocol, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		caps:         caps,
		proto:        proto,
		logger:       logger,
		descriptions: make(map[string]*model.ProcessDescription),
	}
}

// Capabilities returns the discovered capabilities.
func (s *Service) Capabilities() *model.Capabilities {
	return s.caps
}

// Protocol returns the protocol selected at discovery.
func (s *Service) Protocol() protocol.Protocol {
	return s.proto
}

// Version returns the negotiated wire version.
func (s *Service) Version() protocol.Version {
	return s.proto.Version()
}

func (s *Service) cached(id string) (*model.ProcessDescription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.descriptions[id]
	return d, ok
}

func (s *Service) store(descs []*model.ProcessDescription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range descs {
		s.descriptions[d.ID] = d
	}
}

// ProcessDescription returns the description of process id, fetching it
// on first use. Every description in the response is cached. An id the
// server does not describe yields a *model.StateError wrapping
// model.ErrNotFound.
func (s *Service) ProcessDescription(ctx context.Context, id string) (*model.ProcessDescription, error) {
	if d, ok := s.cached(id); ok {
		return d, nil
	}

	descs, err := s.proto.DescribeProcess(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store(descs)

	if d, ok := s.cached(id); ok {
		return d, nil
	}
	return nil, &model.StateError{Op: "process", ID: id, Err: model.ErrNotFound}
}

// DescribeAll returns descriptions for ids, in order, fetching uncached
// ones concurrently. With no ids it describes every process listed in the
// capabilities, or asks the server for all processes when the capabilities
// list none.
func (s *Service) DescribeAll(ctx context.Context, ids ...string) ([]*model.ProcessDescription, error) {
	if len(ids) == 0 {
		for _, ps := range s.caps.ProcessSummaries {
			ids = append(ids, ps.ID)
		}
	}
	if len(ids) == 0 {
		descs, err := s.proto.DescribeProcess(ctx)
		if err != nil {
			return nil, err
		}
		s.store(descs)
		return descs, nil
	}

	out := make([]*model.ProcessDescription, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(describeConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			d, err := s.ProcessDescription(gctx, id)
			if err != nil {
				return fmt.Errorf("describe %q: %w", id, err)
			}
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Execute runs process id. Input and output identifiers are checked
// against the process description first; an unknown one yields a
// *model.StateError wrapping model.ErrNotFound and nothing is sent.
func (s *Service) Execute(ctx context.Context, id string, inputs []model.Input, outputs []model.OutputRequest, opts ExecuteOptions) (*protocol.ExecuteResponse, error) {
	desc, err := s.ProcessDescription(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, in := range inputs {
		if _, err := desc.RequireInput(in.ID); err != nil {
			return nil, err
		}
	}
	for _, out := range outputs {
		if _, err := desc.RequireOutput(out.ID); err != nil {
			return nil, err
		}
	}

	resp, err := s.proto.Execute(ctx, protocol.ExecuteRequest{
		ProcessID: id,
		Inputs:    inputs,
		Outputs:   outputs,
		Async:     opts.Async,
		Raw:       opts.Raw,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("wps execute", "process", id, "async", opts.Async, "response", resp.Kind())
	if resp.Job != nil {
		s.observe(resp.Job.Status())
	}
	return resp, nil
}

// Refresh polls the server once and feeds the status into j.
func (s *Service) Refresh(ctx context.Context, j *job.Job) error {
	info, err := s.proto.GetStatus(ctx, j.ID())
	if err != nil {
		return err
	}
	if err := j.Update(*info); err != nil {
		return err
	}
	s.logger.Debug("wps job status", "job_id", j.ID(), "status", info.Status)
	s.observe(info.Status)
	return nil
}

// FetchResult retrieves the result of j and attaches it. If a result was
// already attached it is returned without a request. When concurrent calls
// race, every caller gets the result that was attached first.
func (s *Service) FetchResult(ctx context.Context, j *job.Job) (*model.Result, error) {
	if r, ok := j.Result(); ok {
		return r, nil
	}
	r, err := s.proto.GetResult(ctx, j.ID())
	if err != nil {
		return nil, err
	}
	if err := j.SetResult(r); err != nil {
		if errors.Is(err, model.ErrResultAlreadySet) {
			if first, ok := j.Result(); ok {
				return first, nil
			}
		}
		return nil, err
	}
	return r, nil
}

func (s *Service) observe(status model.Status) {
	if s.jobObserver != nil {
		s.jobObserver.ObserveJobStatus(status)
	}
}
