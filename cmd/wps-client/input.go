package main

import (
	"fmt"
	"strings"

	"github.com/smnsjas/go-wps/model"
)

// parseInput parses an --input value:
//
//	id=value                      literal
//	id=@https://host/data.gml     reference
//	id=value;mimeType=text/csv    inline data with format metadata
//
// Options after ';' are mimeType, encoding, schema, and for references
// body and bodyRef.
func parseInput(s string) (model.Input, error) {
	head, opts, err := splitOptions(s)
	if err != nil {
		return model.Input{}, err
	}
	id, value, ok := strings.Cut(head, "=")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return model.Input{}, fmt.Errorf("input %q: want id=value", s)
	}

	if href, isRef := strings.CutPrefix(value, "@"); isRef {
		ref := model.Ref{
			Href:              href,
			MimeType:          opts["mimetype"],
			Encoding:          opts["encoding"],
			Schema:            opts["schema"],
			Body:              opts["body"],
			BodyReferenceHref: opts["bodyref"],
		}
		return model.Input{ID: id, Value: ref}, nil
	}
	if opts["body"] != "" || opts["bodyref"] != "" {
		return model.Input{}, fmt.Errorf("input %q: body requires a reference (@href)", s)
	}
	if len(opts) > 0 {
		data := model.Data{
			Value:    value,
			MimeType: opts["mimetype"],
			Encoding: opts["encoding"],
			Schema:   opts["schema"],
		}
		return model.Input{ID: id, Value: data}, nil
	}
	return model.Input{ID: id, Value: model.Literal{Value: value}}, nil
}

// parseOutput parses an --output value: id, optionally followed by
// ";value" for inline transmission and format options.
func parseOutput(s string) (model.OutputRequest, error) {
	id, opts, err := splitOptions(s)
	if err != nil {
		return model.OutputRequest{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return model.OutputRequest{}, fmt.Errorf("output %q: empty id", s)
	}
	_, asValue := opts["value"]
	return model.OutputRequest{
		ID:       id,
		AsValue:  asValue,
		MimeType: opts["mimetype"],
		Encoding: opts["encoding"],
		Schema:   opts["schema"],
	}, nil
}

var knownOptions = map[string]bool{
	"mimetype": true,
	"encoding": true,
	"schema":   true,
	"body":     true,
	"bodyref":  true,
	"value":    true,
}

// splitOptions splits "head;k=v;flag" into head and lower-cased options.
func splitOptions(s string) (string, map[string]string, error) {
	parts := strings.Split(s, ";")
	opts := make(map[string]string, len(parts)-1)
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		k, val, _ := strings.Cut(p, "=")
		k = strings.ToLower(strings.TrimSpace(k))
		if !knownOptions[k] {
			return "", nil, fmt.Errorf("%q: unknown option %q", s, k)
		}
		opts[k] = val
	}
	return parts[0], opts, nil
}
