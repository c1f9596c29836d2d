package wps20

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smnsjas/go-wps/model"
	"github.com/smnsjas/go-wps/ows"
	"github.com/smnsjas/go-wps/protocol"
	"github.com/smnsjas/go-wps/transport"
)

// recorder is a Doer that returns canned responses and keeps the requests.
type recorder struct {
	requests  []*transport.Request
	responses []*transport.Response
	err       error
}

func (r *recorder) Do(_ context.Context, req *transport.Request) (*transport.Response, error) {
	r.requests = append(r.requests, req)
	if r.err != nil {
		return nil, r.err
	}
	resp := r.responses[0]
	if len(r.responses) > 1 {
		r.responses = r.responses[1:]
	}
	return resp, nil
}

func xmlResponse(status int, body string) *transport.Response {
	return &transport.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"text/xml; charset=utf-8"}},
		Body:       []byte(body),
	}
}

func newTestProtocol(usePost bool, responses ...*transport.Response) (*Protocol, *recorder) {
	rec := &recorder{responses: responses}
	return New(protocol.NewEndpoint("http://wps.test/wps", usePost, rec)), rec
}

func TestProtocol_Version(t *testing.T) {
	p, _ := newTestProtocol(false)
	assert.Equal(t, protocol.V20, p.Version())
	assert.Equal(t, protocol.V20, p.Codec().Version())
}

func TestProtocol_DescribeProcessGet(t *testing.T) {
	p, rec := newTestProtocol(false, xmlResponse(200, offeringsXML))

	descs, err := p.DescribeProcess(context.Background(), "buffer")
	require.NoError(t, err)
	require.Len(t, descs, 1)

	require.Len(t, rec.requests, 1)
	req := rec.requests[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, OpDescribeProcess, req.Operation)
	assert.Equal(t, "http://wps.test/wps?service=WPS&version=2.0.0&request=DescribeProcess&identifier=buffer", req.URL)
}

func TestProtocol_DescribeProcessPost(t *testing.T) {
	p, rec := newTestProtocol(true, xmlResponse(200, offeringsXML))

	_, err := p.DescribeProcess(context.Background())
	require.NoError(t, err)

	req := rec.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "http://wps.test/wps", req.URL)
	assert.Equal(t, transport.ContentTypeXML, req.ContentType)
	assert.Contains(t, string(req.Body), "<ows:Identifier>ALL</ows:Identifier>")
}

func TestProtocol_ExecuteSyncResult(t *testing.T) {
	doc := `<wps:Result xmlns:wps="http://www.opengis.net/wps/2.0"><wps:Output id="o"><wps:Data><wps:LiteralValue>3</wps:LiteralValue></wps:Data></wps:Output></wps:Result>`
	p, rec := newTestProtocol(false, xmlResponse(200, doc))

	resp, err := p.Execute(context.Background(), protocol.ExecuteRequest{ProcessID: "add"})
	require.NoError(t, err)
	assert.Equal(t, protocol.ResponseResult, resp.Kind())
	require.Len(t, resp.Result.Outputs, 1)
	assert.Equal(t, "3", resp.Result.Outputs[0].Data.Value)

	// Execute is always POSTed, even when GET is preferred.
	assert.Equal(t, http.MethodPost, rec.requests[0].Method)
}

func TestProtocol_ExecuteAsyncJob(t *testing.T) {
	p, _ := newTestProtocol(false, xmlResponse(200, statusDoc("Accepted")))

	resp, err := p.Execute(context.Background(), protocol.ExecuteRequest{ProcessID: "add", Async: true})
	require.NoError(t, err)
	require.Equal(t, protocol.ResponseJob, resp.Kind())
	assert.Equal(t, "FB6DD4B0-A2BB-11E3-A5E2-0800200C9A66", resp.Job.ID())
	assert.Equal(t, model.StatusAccepted, resp.Job.Status())
	assert.False(t, resp.Job.IsCompleted())
}

func TestProtocol_ExecuteStatusWithoutJobID(t *testing.T) {
	doc := `<wps:StatusInfo xmlns:wps="http://www.opengis.net/wps/2.0"><wps:Status>Accepted</wps:Status></wps:StatusInfo>`
	p, _ := newTestProtocol(false, xmlResponse(200, doc))

	_, err := p.Execute(context.Background(), protocol.ExecuteRequest{ProcessID: "add", Async: true})
	assert.ErrorIs(t, err, protocol.ErrMissingJobID)
}

func TestProtocol_ExecuteRaw(t *testing.T) {
	raw := &transport.Response{
		StatusCode: 200,
		Header:     http.Header{"Content-Type": {"image/png"}},
		Body:       []byte{0x89, 'P', 'N', 'G'},
	}
	p, _ := newTestProtocol(false, raw)

	resp, err := p.Execute(context.Background(), protocol.ExecuteRequest{ProcessID: "render", Raw: true})
	require.NoError(t, err)
	require.Equal(t, protocol.ResponseRaw, resp.Kind())
	assert.Equal(t, "image/png", resp.Raw.ContentType)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, resp.Raw.Body)
}

func TestProtocol_ExceptionOnFailure(t *testing.T) {
	exc := `<ows:ExceptionReport xmlns:ows="http://www.opengis.net/ows/2.0" version="2.0.0">
	  <ows:Exception exceptionCode="InvalidParameterValue" locator="INPUT"><ows:ExceptionText>bad</ows:ExceptionText></ows:Exception>
	</ows:ExceptionReport>`
	p, _ := newTestProtocol(false, xmlResponse(400, exc))

	_, err := p.GetStatus(context.Background(), "j")
	require.Error(t, err)
	e, ok := ows.AsException(err)
	require.True(t, ok)
	assert.Equal(t, "bad", e.Message)
	assert.Equal(t, "INPUT", e.Locator)
	assert.Equal(t, "InvalidParameterValue", e.Code)
}

func TestProtocol_ExceptionWithOKStatus(t *testing.T) {
	exc := `<ows:ExceptionReport xmlns:ows="http://www.opengis.net/ows/2.0"><ows:Exception exceptionCode="NoSuchJob"/></ows:ExceptionReport>`
	p, _ := newTestProtocol(false, xmlResponse(200, exc))

	_, err := p.GetResult(context.Background(), "j")
	assert.True(t, ows.IsException(err))
}

func TestProtocol_TransportError(t *testing.T) {
	resp := &transport.Response{StatusCode: 502, Status: "502 Bad Gateway", Header: http.Header{}, Body: []byte("upstream down")}
	p, _ := newTestProtocol(false, resp)

	_, err := p.GetStatus(context.Background(), "j")
	var te *protocol.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 502, te.StatusCode)
	assert.True(t, strings.Contains(err.Error(), "upstream down"))
}

func TestProtocol_DoerErrorPropagates(t *testing.T) {
	boom := errors.New("dial failed")
	rec := &recorder{err: boom}
	p := New(protocol.NewEndpoint("http://wps.test/wps", false, rec))

	_, err := p.DescribeProcess(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, rec.requests, 1, "no retry")
}

func TestProtocol_GetStatusAndResult(t *testing.T) {
	result := `<wps:Result xmlns:wps="http://www.opengis.net/wps/2.0" xmlns:xlink="http://www.w3.org/1999/xlink">
	  <wps:JobID>FB6DD4B0-A2BB-11E3-A5E2-0800200C9A66</wps:JobID>
	  <wps:Output id="o"><wps:Reference xlink:href="http://x/y"/></wps:Output>
	</wps:Result>`
	p, rec := newTestProtocol(false, xmlResponse(200, statusDoc("Succeeded")), xmlResponse(200, result))
	ctx := context.Background()

	info, err := p.GetStatus(ctx, "FB6DD4B0-A2BB-11E3-A5E2-0800200C9A66")
	require.NoError(t, err)
	assert.True(t, info.IsCompleted())

	r, err := p.GetResult(ctx, info.JobID)
	require.NoError(t, err)
	assert.Equal(t, "http://x/y", r.Outputs[0].Reference)

	require.Len(t, rec.requests, 2)
	assert.Contains(t, rec.requests[0].URL, "request=GetStatus&jobid=FB6DD4B0-A2BB-11E3-A5E2-0800200C9A66")
	assert.Contains(t, rec.requests[1].URL, "request=GetResult&jobid=")
}
