package integration

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const capabilities = `<wps:Capabilities xmlns:wps="http://www.opengis.net/wps/2.0" xmlns:ows="http://www.opengis.net/ows/2.0" service="WPS" version="2.0.0">
  <ows:ServiceIdentification><ows:Title>Mock WPS</ows:Title></ows:ServiceIdentification>
  <wps:Contents>
    <wps:ProcessSummary jobControlOptions="sync-execute async-execute" outputTransmission="value reference">
      <ows:Identifier>echo</ows:Identifier>
      <ows:Title>Echo</ows:Title>
    </wps:ProcessSummary>
  </wps:Contents>
</wps:Capabilities>`

const offerings = `<wps:ProcessOfferings xmlns:wps="http://www.opengis.net/wps/2.0" xmlns:ows="http://www.opengis.net/ows/2.0">
  <wps:ProcessOffering jobControlOptions="sync-execute async-execute" outputTransmission="value reference">
    <wps:Process>
      <ows:Identifier>echo</ows:Identifier>
      <wps:Input><ows:Identifier>text</ows:Identifier><wps:LiteralData><wps:Format mimeType="text/plain" default="true"/></wps:LiteralData></wps:Input>
      <wps:Output><ows:Identifier>out</ows:Identifier><wps:LiteralData><wps:Format mimeType="text/plain" default="true"/></wps:LiteralData></wps:Output>
    </wps:Process>
  </wps:ProcessOffering>
</wps:ProcessOfferings>`

const exceptionReport = `<ows:ExceptionReport xmlns:ows="http://www.opengis.net/ows/2.0" version="2.0.0">
  <ows:Exception exceptionCode="NoSuchJob" locator="%s"><ows:ExceptionText>unknown job</ows:ExceptionText></ows:Exception>
</ows:ExceptionReport>`

// mockJob advances one status per poll until it reaches Succeeded.
type mockJob struct {
	polls int
	text  string
}

func (j *mockJob) status() string {
	switch {
	case j.polls == 0:
		return "Accepted"
	case j.polls < 2:
		return "Running"
	}
	return "Succeeded"
}

// MockWPS is an in-memory WPS 2.0 server. Execute echoes the text input
// into the out output, synchronously or through a job.
type MockWPS struct {
	mu   sync.Mutex
	jobs map[string]*mockJob

	// requests counts calls per request type.
	requests map[string]int
}

// NewMockWPS creates an empty server.
func NewMockWPS() *MockWPS {
	return &MockWPS{
		jobs:     make(map[string]*mockJob),
		requests: make(map[string]int),
	}
}

// Requests returns how many calls of the given type were served.
func (m *MockWPS) Requests(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[name]
}

func (m *MockWPS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w.Header().Set("Content-Type", "text/xml")
	q := r.URL.Query()
	if r.Method == http.MethodPost {
		body, _ := io.ReadAll(r.Body)
		m.requests["Execute"]++
		m.execute(w, string(body))
		return
	}

	request := q.Get("request")
	m.requests[request]++
	switch strings.ToLower(request) {
	case "getcapabilities":
		_, _ = io.WriteString(w, capabilities)
	case "describeprocess":
		_, _ = io.WriteString(w, offerings)
	case "getstatus":
		j, ok := m.jobs[q.Get("jobid")]
		if !ok {
			m.noSuchJob(w, q.Get("jobid"))
			return
		}
		_, _ = io.WriteString(w, statusInfo(q.Get("jobid"), j.status()))
		j.polls++
	case "getresult":
		j, ok := m.jobs[q.Get("jobid")]
		if !ok || j.status() != "Succeeded" {
			m.noSuchJob(w, q.Get("jobid"))
			return
		}
		_, _ = io.WriteString(w, result(q.Get("jobid"), j.text))
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (m *MockWPS) execute(w http.ResponseWriter, body string) {
	text := between(body, "<wps:Data>", "</wps:Data>")
	if !strings.Contains(body, `mode="async"`) {
		_, _ = io.WriteString(w, result("", text))
		return
	}
	id := uuid.NewString()
	m.jobs[id] = &mockJob{text: text}
	_, _ = io.WriteString(w, statusInfo(id, "Accepted"))
}

func (m *MockWPS) noSuchJob(w http.ResponseWriter, id string) {
	w.WriteHeader(http.StatusBadRequest)
	_, _ = fmt.Fprintf(w, exceptionReport, id)
}

func statusInfo(id, status string) string {
	return `<wps:StatusInfo xmlns:wps="http://www.opengis.net/wps/2.0">` +
		`<wps:JobID>` + id + `</wps:JobID><wps:Status>` + status + `</wps:Status></wps:StatusInfo>`
}

func result(id, text string) string {
	var jobID string
	if id != "" {
		jobID = `<wps:JobID>` + id + `</wps:JobID>`
	}
	return `<wps:Result xmlns:wps="http://www.opengis.net/wps/2.0">` + jobID +
		`<wps:Output id="out"><wps:Data mimeType="text/plain">` + text + `</wps:Data></wps:Output></wps:Result>`
}

func between(s, start, end string) string {
	_, rest, ok := strings.Cut(s, start)
	if !ok {
		return ""
	}
	v, _, _ := strings.Cut(rest, end)
	return v
}
