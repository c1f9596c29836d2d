package model

// Metadata is an ows:Metadata link.
type Metadata struct {
	Href  string `json:"href,omitempty" yaml:"href,omitempty"`
	Role  string `json:"role,omitempty" yaml:"role,omitempty"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Identification holds the descriptive fields shared by services,
// processes, inputs and outputs.
type Identification struct {
	ID       string     `json:"id" yaml:"id"`
	Title    string     `json:"title,omitempty" yaml:"title,omitempty"`
	Abstract string     `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Keywords []string   `json:"keywords" yaml:"keywords"`
	Metadata []Metadata `json:"metadata" yaml:"metadata"`
}

// ProcessSummary is the capabilities-level view of one process.
//
// For WPS 1.0 sources the five capability flags are fixed: sync, async and
// dismiss true, value and reference false.
type ProcessSummary struct {
	Identification `yaml:",inline"`

	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	AllowsSync    bool `json:"allowsSync" yaml:"allowsSync"`
	AllowsAsync   bool `json:"allowsAsync" yaml:"allowsAsync"`
	AllowsDismiss bool `json:"allowsDismiss" yaml:"allowsDismiss"`

	AllowsValue     bool `json:"allowsValue" yaml:"allowsValue"`
	AllowsReference bool `json:"allowsReference" yaml:"allowsReference"`
}

// Capabilities is a decoded GetCapabilities response.
type Capabilities struct {
	Version string `json:"version" yaml:"version"`

	Title             string   `json:"title,omitempty" yaml:"title,omitempty"`
	Abstract          string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Keywords          []string `json:"keywords" yaml:"keywords"`
	Profiles          []string `json:"profiles" yaml:"profiles"`
	Fees              string   `json:"fees,omitempty" yaml:"fees,omitempty"`
	AccessConstraints []string `json:"accessConstraints" yaml:"accessConstraints"`
	ProviderName      string   `json:"providerName,omitempty" yaml:"providerName,omitempty"`

	ProcessSummaries []ProcessSummary `json:"processSummaries" yaml:"processSummaries"`
}

// Summary returns the summary of the process with the given id.
func (c *Capabilities) Summary(id string) (*ProcessSummary, bool) {
	for i := range c.ProcessSummaries {
		if c.ProcessSummaries[i].ID == id {
			return &c.ProcessSummaries[i], true
		}
	}
	return nil, false
}
