package wps20

import (
	"context"
	"fmt"

	"github.com/smnsjas/go-wps/job"
	"github.com/smnsjas/go-wps/model"
	"github.com/smnsjas/go-wps/protocol"
)

// Operation names used for transport logging and metrics.
const (
	OpDescribeProcess = "DescribeProcess"
	OpExecute         = "Execute"
	OpGetStatus       = "GetStatus"
	OpGetResult       = "GetResult"
)

// Protocol speaks WPS 2.0.0 to one endpoint.
type Protocol struct {
	endpoint *protocol.Endpoint
	codec    Codec
}

var _ protocol.Protocol = (*Protocol)(nil)

// New creates a 2.0 protocol bound to endpoint.
func New(endpoint *protocol.Endpoint) *Protocol {
	return &Protocol{endpoint: endpoint}
}

// Version returns protocol.V20.
func (p *Protocol) Version() protocol.Version {
	return protocol.V20
}

// Codec returns the codec used for requests and responses.
func (p *Protocol) Codec() Codec {
	return p.codec
}

// DescribeProcess fetches process offerings. No ids requests ALL.
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

// Execute POSTs an Execute document. An XML response becomes a Result or a
// Job; any other content type is returned untouched as RawOutput.
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

	info, result, err := p.codec.DecodeStatusInfoOrResult(resp.Body)
	if err != nil {
		return nil, err
	}
	if result != nil {
		return &protocol.ExecuteResponse{Result: result}, nil
	}
	if info.JobID == "" {
		return nil, fmt.Errorf("wps20: %s: %w", OpExecute, protocol.ErrMissingJobID)
	}
	return &protocol.ExecuteResponse{Job: job.New(info.JobID, *info)}, nil
}

// GetStatus polls a job.
func (p *Protocol) GetStatus(ctx context.Context, jobID string) (*model.StatusInfo, error) {
	payload, err := p.codec.EncodeGetStatus(jobID, p.endpoint.UsePost)
	if err != nil {
		return nil, err
	}
	resp, err := p.endpoint.Send(ctx, OpGetStatus, payload, p.endpoint.UsePost)
	if err != nil {
		return nil, err
	}
	return p.codec.DecodeStatusInfo(resp.Body)
}

// GetResult fetches the result of a job.
func (p *Protocol) GetResult(ctx context.Context, jobID string) (*model.Result, error) {
	payload, err := p.codec.EncodeGetResult(jobID, p.endpoint.UsePost)
	if err != nil {
		return nil, err
	}
	resp, err := p.endpoint.Send(ctx, OpGetResult, payload, p.endpoint.UsePost)
	if err != nil {
		return nil, err
	}
	return p.codec.DecodeResult(resp.Body)
}
