package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// InputValue is the value supplied for one execute input. It is one of
// Ref, Data or Literal.
type InputValue interface {
	isInputValue()
}

// Ref passes an input by reference. When Body or BodyReferenceHref is set
// the server is asked to fetch Href with a POST carrying that body.
type Ref struct {
	Href     string
	MimeType string
	Encoding string
	Schema   string

	Body              string
	BodyReferenceHref string
}

// Data passes an inline input value with optional format metadata.
type Data struct {
	Value    any
	MimeType string
	Encoding string
	Schema   string
}

// Literal passes a bare value with no format metadata.
type Literal struct {
	Value any
}

func (Ref) isInputValue()     {}
func (Data) isInputValue()    {}
func (Literal) isInputValue() {}

// Input binds an input id to its value. Inputs are encoded in slice order;
// the same id may appear more than once for inputs with maxOccurs > 1.
type Input struct {
	ID    string
	Value InputValue
}

// OutputRequest selects one output and how it is transmitted.
type OutputRequest struct {
	ID string

	// AsValue requests inline transmission. The default is by reference.
	AsValue bool

	MimeType string
	Encoding string
	Schema   string
}

// Transmission returns the WPS 2.0 transmission mode, "value" or
// "reference".
func (o OutputRequest) Transmission() string {
	if o.AsValue {
		return "value"
	}
	return "reference"
}

// literalTime is the layout used for time.Time literals.
const literalTime = "2006-01-02T15:04:05.000Z"

// EncodeLiteral renders an inline value as text. Strings, numbers and
// booleans pass through, times render as ISO-8601 in UTC, byte slices are
// taken as text and anything else is JSON-encoded. The result is not
// escaped.
func EncodeLiteral(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case json.Number:
		return x.String(), nil
	case time.Time:
		return x.UTC().Format(literalTime), nil
	case *time.Time:
		if x == nil {
			return "", nil
		}
		return x.UTC().Format(literalTime), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode literal: %w", err)
	}
	return string(b), nil
}
