package wps10

import (
	"context"
	"errors"
	"fmt"

	"github.com/smnsjas/go-wps/job"
	"github.com/smnsjas/go-wps/model"
	"github.com/smnsjas/go-wps/protocol"
)

// ErrProcessFailed is returned when a synchronous execute reports
// ProcessFailed without an exception report.
var ErrProcessFailed = errors.New("wps10: process failed")

// Operation names used for transport logging and metrics.
const (
	OpDescribeProcess = "DescribeProcess"
	OpExecute         = "Execute"
)

// Protocol speaks WPS 1.0.0 to one endpoint.
type Protocol struct {
	endpoint *protocol.Endpoint
	codec    Codec
}

var _ protocol.Protocol = (*Protocol)(nil)

// New creates a 1.0 protocol bound to endpoint.
func New(endpoint *protocol.Endpoint) *Protocol {
	return &Protocol{endpoint: endpoint}
}

// Version returns protocol.V10.
func (p *Protocol) Version() protocol.Version {
	return protocol.V10
}

// Codec returns the codec used for requests and responses.
func (p *Protocol) Codec() Codec {
	return p.codec
}

// DescribeProcess fetches process descriptions. No ids requests all.
func (p *Protocol) DescribeProcess(ctx context.Context, ids ...string) ([]*model.ProcessDescription, error) {
	payload, err := p.codec.EncodeDescribeProcess(ids, p.endpoint.UsePost)
	if err != nil {
		return nil, err
	}
	resp, err := p.endpoint.Send(ctx, OpDescribeProcess, payload, p.endpoint.UsePost)
	if err != nil {
		return nil, err
	}
	return p.codec.DecodeProcessDescriptions(resp.Body)
}

// Execute POSTs an Execute document. A non-XML response is returned as
// RawOutput. A pending ExecuteResponse becomes a Job keyed by its
// statusLocation.
func (p *Protocol) Execute(ctx context.Context, req protocol.ExecuteRequest) (*protocol.ExecuteResponse, error) {
	body, err := p.codec.EncodeExecute(req)
	if err != nil {
		return nil, err
	}
	resp, err := p.endpoint.Post(ctx, OpExecute, body)
	if err != nil {
		return nil, err
	}

	if !protocol.XMLContentTypes[resp.ContentType()] {
		return &protocol.ExecuteResponse{Raw: &protocol.RawOutput{
			ContentType: resp.Header.Get("Content-Type"),
			Body:        resp.Body,
		}}, nil
	}

	info, result, err := p.codec.DecodeExecuteResponse(resp.Body)
	if err != nil {
		return nil, err
	}
	if result != nil {
		return &protocol.ExecuteResponse{Result: result}, nil
	}
	if info.JobID == "" {
		if info.Status == model.StatusFailed {
			return nil, ErrProcessFailed
		}
		return nil, fmt.Errorf("wps10: %s: %w", OpExecute, protocol.ErrMissingJobID)
	}
	return &protocol.ExecuteResponse{Job: job.New(info.JobID, *info)}, nil
}

// GetStatus is not implemented for WPS 1.0.0.
func (p *Protocol) GetStatus(context.Context, string) (*model.StatusInfo, error) {
	return nil, protocol.ErrNotImplemented
}

// GetResult is not implemented for WPS 1.0.0.
func (p *Protocol) GetResult(context.Context, string) (*model.Result, error) {
	return nil, protocol.ErrNotImplemented
}
