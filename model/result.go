package model

import "time"

// OutputKind identifies which field of an Output is populated.
type OutputKind int

const (
	// OutputEmpty means the server returned an output element with no
	// recognizable content.
	OutputEmpty OutputKind = iota
	// OutputInline means Data is set.
	OutputInline
	// OutputReference means Reference is set.
	OutputReference
	// OutputNested means SubOutputs is set.
	OutputNested
)

// String returns the kind name.
func (k OutputKind) String() string {
	switch k {
	case OutputInline:
		return "Inline"
	case OutputReference:
		return "Reference"
	case OutputNested:
		return "Nested"
	default:
		return "Empty"
	}
}

// OutputData is an inline output value. Literal values carry DataType and
// UOM; complex values carry MimeType, Encoding and Schema. For complex data
// with child elements Value is the serialized inner XML.
type OutputData struct {
	Value    string `json:"value" yaml:"value"`
	Complex  bool   `json:"complex,omitempty" yaml:"complex,omitempty"`
	MimeType string `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	Schema   string `json:"schema,omitempty" yaml:"schema,omitempty"`
	DataType string `json:"dataType,omitempty" yaml:"dataType,omitempty"`
	UOM      string `json:"uom,omitempty" yaml:"uom,omitempty"`
}

// Output is one result output. At most one of Data, Reference and
// SubOutputs is populated.
type Output struct {
	ID         string      `json:"id" yaml:"id"`
	Data       *OutputData `json:"data,omitempty" yaml:"data,omitempty"`
	Reference  string      `json:"reference,omitempty" yaml:"reference,omitempty"`
	SubOutputs []Output    `json:"subOutputs,omitempty" yaml:"subOutputs,omitempty"`
}

// Kind reports which field is populated.
func (o Output) Kind() OutputKind {
	switch {
	case o.Reference != "":
		return OutputReference
	case o.Data != nil:
		return OutputInline
	case len(o.SubOutputs) > 0:
		return OutputNested
	default:
		return OutputEmpty
	}
}

// Result is the terminal outcome of a successful execution.
type Result struct {
	JobID string `json:"jobId,omitempty" yaml:"jobId,omitempty"`

	// ExpirationDate is zero when no expiry is declared.
	ExpirationDate time.Time `json:"expirationDate,omitzero" yaml:"expirationDate,omitempty"`

	Outputs []Output `json:"outputs" yaml:"outputs"`
}

// Output returns the top-level output with the given id.
func (r *Result) Output(id string) (*Output, bool) {
	for i := range r.Outputs {
		if r.Outputs[i].ID == id {
			return &r.Outputs[i], true
		}
	}
	return nil, false
}
