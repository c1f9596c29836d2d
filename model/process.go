package model

// FormatDescription is one supported data format of an input or output.
type FormatDescription struct {
	MimeType string `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	Schema   string `json:"schema,omitempty" yaml:"schema,omitempty"`

	// MaximumMegabytes is nil when the limit is not declared.
	MaximumMegabytes *int `json:"maximumMegabytes,omitempty" yaml:"maximumMegabytes,omitempty"`

	IsDefault bool `json:"isDefault" yaml:"isDefault"`
}

// AllowedValue is either a single literal value or an inclusive range.
type AllowedValue struct {
	Value string `json:"value,omitempty" yaml:"value,omitempty"`

	IsRange bool   `json:"isRange,omitempty" yaml:"isRange,omitempty"`
	Minimum string `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum string `json:"maximum,omitempty" yaml:"maximum,omitempty"`
}

// LiteralDataDomain describes the value space of a literal input or output.
type LiteralDataDomain struct {
	DataType      string         `json:"dataType,omitempty" yaml:"dataType,omitempty"`
	UOM           string         `json:"uom,omitempty" yaml:"uom,omitempty"`
	DefaultValue  string         `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	AllowedValues []AllowedValue `json:"allowedValues" yaml:"allowedValues"`
	IsDefault     bool           `json:"isDefault" yaml:"isDefault"`
}

// DataDescription holds the format and domain lists shared by inputs and
// outputs.
type DataDescription struct {
	Formats []FormatDescription `json:"formats" yaml:"formats"`
	Domains []LiteralDataDomain `json:"domains" yaml:"domains"`
}

// DefaultFormat returns the format flagged as default.
func (d *DataDescription) DefaultFormat() (*FormatDescription, bool) {
	for i := range d.Formats {
		if d.Formats[i].IsDefault {
			return &d.Formats[i], true
		}
	}
	return nil, false
}

// InputDescription describes one process input. SubInputs is only ever
// populated by WPS 2.0 nested inputs.
type InputDescription struct {
	Identification  `yaml:",inline"`
	DataDescription `yaml:",inline"`

	SubInputs []InputDescription `json:"subInputs" yaml:"subInputs"`
}

// OutputDescription describes one process output. SubOutputs is only ever
// populated by WPS 2.0 nested outputs.
type OutputDescription struct {
	Identification  `yaml:",inline"`
	DataDescription `yaml:",inline"`

	SubOutputs []OutputDescription `json:"subOutputs" yaml:"subOutputs"`
}

// ProcessDescription is a full process description with its inputs and
// outputs. Use NewProcessDescription to build one so that id lookups are
// indexed.
type ProcessDescription struct {
	ProcessSummary `yaml:",inline"`

	Lang    string              `json:"lang,omitempty" yaml:"lang,omitempty"`
	Inputs  []InputDescription  `json:"inputs" yaml:"inputs"`
	Outputs []OutputDescription `json:"outputs" yaml:"outputs"`

	inputIndex  map[string]int
	outputIndex map[string]int
}

// NewProcessDescription builds a description and its id indexes. If an id
// occurs more than once the first occurrence is the one found by lookups.
func NewProcessDescription(summary ProcessSummary, lang string, inputs []InputDescription, outputs []OutputDescription) *ProcessDescription {
	if inputs == nil {
		inputs = []InputDescription{}
	}
	if outputs == nil {
		outputs = []OutputDescription{}
	}
	d := &ProcessDescription{
		ProcessSummary: summary,
		Lang:           lang,
		Inputs:         inputs,
		Outputs:        outputs,
		inputIndex:     make(map[string]int, len(inputs)),
		outputIndex:    make(map[string]int, len(outputs)),
	}
	for i, in := range inputs {
		if _, dup := d.inputIndex[in.ID]; !dup {
			d.inputIndex[in.ID] = i
		}
	}
	for i, out := range outputs {
		if _, dup := d.outputIndex[out.ID]; !dup {
			d.outputIndex[out.ID] = i
		}
	}
	return d
}

// Input looks up an input by id. An unknown id reports false.
func (d *ProcessDescription) Input(id string) (*InputDescription, bool) {
	if d.inputIndex == nil {
		for i := range d.Inputs {
			if d.Inputs[i].ID == id {
				return &d.Inputs[i], true
			}
		}
		return nil, false
	}
	i, ok := d.inputIndex[id]
	if !ok {
		return nil, false
	}
	return &d.Inputs[i], true
}

// Output looks up an output by id. An unknown id reports false.
func (d *ProcessDescription) Output(id string) (*OutputDescription, bool) {
	if d.outputIndex == nil {
		for i := range d.Outputs {
			if d.Outputs[i].ID == id {
				return &d.Outputs[i], true
			}
		}
		return nil, false
	}
	i, ok := d.outputIndex[id]
	if !ok {
		return nil, false
	}
	return &d.Outputs[i], true
}

// RequireInput is like Input but returns a *StateError for an unknown id.
func (d *ProcessDescription) RequireInput(id string) (*InputDescription, error) {
	in, ok := d.Input(id)
	if !ok {
		return nil, &StateError{Op: "input", ID: id, Err: ErrNotFound}
	}
	return in, nil
}

// RequireOutput is like Output but returns a *StateError for an unknown id.
func (d *ProcessDescription) RequireOutput(id string) (*OutputDescription, error) {
	out, ok := d.Output(id)
	if !ok {
		return nil, &StateError{Op: "output", ID: id, Err: ErrNotFound}
	}
	return out, nil
}
