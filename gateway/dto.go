package gateway

import (
	"fmt"
	"time"

	"github.com/smnsjas/go-wps/model"
)

// InputBody is one execute input. Href selects a reference input. Without
// it, MimeType, Encoding or Schema make Value inline data and a bare Value
// is a literal.
type InputBody struct {
	ID    string `json:"id" minLength:"1" doc:"Input identifier"`
	Value any    `json:"value,omitempty" doc:"Inline value"`

	Href              string `json:"href,omitempty" format:"uri" doc:"Reference URL"`
	Body              string `json:"body,omitempty" doc:"POST body sent when the server fetches href"`
	BodyReferenceHref string `json:"bodyReference,omitempty" doc:"URL of the POST body sent when the server fetches href"`

	MimeType string `json:"mimeType,omitempty"`
	Encoding string `json:"encoding,omitempty"`
	Schema   string `json:"schema,omitempty"`
}

func (b InputBody) toModel() (model.Input, error) {
	in := model.Input{ID: b.ID}
	switch {
	case b.Href != "":
		in.Value = model.Ref{
			Href:              b.Href,
			MimeType:          b.MimeType,
			Encoding:          b.Encoding,
			Schema:            b.Schema,
			Body:              b.Body,
			BodyReferenceHref: b.BodyReferenceHref,
		}
	case b.Body != "" || b.BodyReferenceHref != "":
		return in, fmt.Errorf("input %q: body requires href", b.ID)
	case b.MimeType != "" || b.Encoding != "" || b.Schema != "":
		in.Value = model.Data{Value: b.Value, MimeType: b.MimeType, Encoding: b.Encoding, Schema: b.Schema}
	default:
		in.Value = model.Literal{Value: b.Value}
	}
	return in, nil
}

// OutputBody selects one output.
type OutputBody struct {
	ID       string `json:"id" minLength:"1" doc:"Output identifier"`
	AsValue  bool   `json:"asValue,omitempty" doc:"Return the output inline instead of by reference"`
	MimeType string `json:"mimeType,omitempty"`
	Encoding string `json:"encoding,omitempty"`
	Schema   string `json:"schema,omitempty"`
}

func (b OutputBody) toModel() model.OutputRequest {
	return model.OutputRequest{
		ID:       b.ID,
		AsValue:  b.AsValue,
		MimeType: b.MimeType,
		Encoding: b.Encoding,
		Schema:   b.Schema,
	}
}

// ExecuteBody is the body of POST /processes/{id}/execution.
type ExecuteBody struct {
	Inputs  []InputBody  `json:"inputs,omitempty"`
	Outputs []OutputBody `json:"outputs,omitempty"`
	Async   bool         `json:"async,omitempty" doc:"Request asynchronous execution"`
	Raw     bool         `json:"raw,omitempty" doc:"Request the raw output instead of a result document"`
}

// JobView is the gateway view of a tracked job.
type JobView struct {
	ID        string       `json:"id" doc:"Gateway job identifier"`
	ProcessID string       `json:"processId"`
	JobID     string       `json:"jobId" doc:"Job identifier assigned by the WPS server"`
	Status    model.Status `json:"status"`
	Created   time.Time    `json:"created"`

	PercentCompleted *int      `json:"percentCompleted,omitempty"`
	NextPoll         time.Time `json:"nextPoll,omitzero"`
	ExpirationDate   time.Time `json:"expirationDate,omitzero"`
}

// ExecutionView is the response of an execution. Kind is "Result", "Job"
// or "Raw" and names the populated field.
type ExecutionView struct {
	Kind   string        `json:"kind" enum:"Result,Job,Raw"`
	Result *model.Result `json:"result,omitempty"`
	Job    *JobView      `json:"job,omitempty"`

	RawContentType string `json:"rawContentType,omitempty"`
	Raw            []byte `json:"raw,omitempty" doc:"Raw output, base64 encoded"`
}

// HealthView is the body of GET /health.
type HealthView struct {
	Status  string `json:"status"`
	Version string `json:"version" doc:"Negotiated WPS version"`
}
