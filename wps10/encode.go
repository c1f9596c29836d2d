package wps10

import (
	"errors"
	"fmt"
	"strings"

	"github.com/smnsjas/go-wps/internal/xmlutil"
	"github.com/smnsjas/go-wps/model"
	"github.com/smnsjas/go-wps/protocol"
)

// ErrRawOutputCount is returned when a raw Execute does not name exactly
// one output. WPS 1.0.0 RawDataOutput carries a single output.
var ErrRawOutputCount = errors.New("wps10: raw execute requires exactly one output")

const nsDecl = `xmlns:wps="` + NsWPS + `" xmlns:ows="` + NsOWS + `" xmlns:xlink="` + NsXLink + `" xmlns:xsi="` + NsXsi + `"`

const allProcesses = "all"

// EncodeDescribeProcess builds a DescribeProcess request. No ids selects
// every process.
func (Codec) EncodeDescribeProcess(ids []string, xmlBody bool) (string, error) {
	if len(ids) == 0 {
		ids = []string{allProcesses}
	}
	for _, id := range ids {
		if id == "" {
			return "", fmt.Errorf("wps10: DescribeProcess: %w", protocol.ErrEmptyIdentifier)
		}
	}

	if !xmlBody {
		return new(xmlutil.KVP).
			Add("service", "WPS").
			Add("version", "1.0.0").
			Add("request", "DescribeProcess").
			Add("identifier", strings.Join(ids, ",")).
			String(), nil
	}

	var b strings.Builder
	b.WriteString(`<wps:DescribeProcess ` + nsDecl + ` xsi:schemaLocation="` + schemaDescribeProcess + `" service="WPS" version="1.0.0">`)
	for _, id := range ids {
		b.WriteString(`<ows:Identifier>` + xmlutil.Escape(id) + `</ows:Identifier>`)
	}
	b.WriteString(`</wps:DescribeProcess>`)
	return b.String(), nil
}

// EncodeExecute builds an Execute request body. Async requests set
// storeExecuteResponse and status so the server reports a statusLocation.
func (Codec) EncodeExecute(req protocol.ExecuteRequest) (string, error) {
	if req.ProcessID == "" {
		return "", fmt.Errorf("wps10: Execute: %w", protocol.ErrEmptyIdentifier)
	}
	if req.Raw && len(req.Outputs) != 1 {
		return "", ErrRawOutputCount
	}

	var b strings.Builder
	b.WriteString(`<wps:Execute ` + nsDecl + ` xsi:schemaLocation="` + schemaExecute + `" service="WPS" version="1.0.0">`)
	b.WriteString(`<ows:Identifier>` + xmlutil.Escape(req.ProcessID) + `</ows:Identifier>`)

	if len(req.Inputs) > 0 {
		b.WriteString(`<wps:DataInputs>`)
		for _, in := range req.Inputs {
			if err := writeInput(&b, in); err != nil {
				return "", err
			}
		}
		b.WriteString(`</wps:DataInputs>`)
	}

	for _, out := range req.Outputs {
		if out.ID == "" {
			return "", fmt.Errorf("wps10: Execute output: %w", protocol.ErrEmptyIdentifier)
		}
	}

	switch {
	case req.Raw:
		out := req.Outputs[0]
		b.WriteString(`<wps:ResponseForm><wps:RawDataOutput` + formatAttrs(out.MimeType, out.Encoding, out.Schema) + `>`)
		b.WriteString(`<ows:Identifier>` + xmlutil.Escape(out.ID) + `</ows:Identifier>`)
		b.WriteString(`</wps:RawDataOutput></wps:ResponseForm>`)
	case len(req.Outputs) > 0 || req.Async:
		b.WriteString(`<wps:ResponseForm><wps:ResponseDocument`)
		if req.Async {
			b.WriteString(` storeExecuteResponse="true" status="true"`)
		}
		b.WriteString(`>`)
		for _, out := range req.Outputs {
			b.WriteString(fmt.Sprintf(`<wps:Output asReference="%t"`, !out.AsValue) + formatAttrs(out.MimeType, out.Encoding, out.Schema) + `>`)
			b.WriteString(`<ows:Identifier>` + xmlutil.Escape(out.ID) + `</ows:Identifier></wps:Output>`)
		}
		b.WriteString(`</wps:ResponseDocument></wps:ResponseForm>`)
	}

	b.WriteString(`</wps:Execute>`)
	return b.String(), nil
}

func writeInput(b *strings.Builder, in model.Input) error {
	if in.ID == "" {
		return fmt.Errorf("wps10: Execute input: %w", protocol.ErrEmptyIdentifier)
	}
	b.WriteString(`<wps:Input><ows:Identifier>` + xmlutil.Escape(in.ID) + `</ows:Identifier>`)

	switch v := in.Value.(type) {
	case model.Ref:
		b.WriteString(`<wps:Reference` + xmlutil.Attr("xlink:href", v.Href) + formatAttrs(v.MimeType, v.Encoding, v.Schema))
		switch {
		case v.Body != "":
			b.WriteString(` method="POST"><wps:Body>` + xmlutil.Escape(v.Body) + `</wps:Body></wps:Reference>`)
		case v.BodyReferenceHref != "":
			b.WriteString(` method="POST"><wps:BodyReference` + xmlutil.Attr("xlink:href", v.BodyReferenceHref) + `/></wps:Reference>`)
		default:
			b.WriteString(`/>`)
		}
	case model.Data:
		text, err := model.EncodeLiteral(v.Value)
		if err != nil {
			return fmt.Errorf("wps10: input %q: %w", in.ID, err)
		}
		b.WriteString(`<wps:Data><wps:ComplexData` + formatAttrs(v.MimeType, v.Encoding, v.Schema) + `>` +
			xmlutil.Escape(text) + `</wps:ComplexData></wps:Data>`)
	case model.Literal, nil:
		var value any
		if lit, ok := v.(model.Literal); ok {
			value = lit.Value
		}
		text, err := model.EncodeLiteral(value)
		if err != nil {
			return fmt.Errorf("wps10: input %q: %w", in.ID, err)
		}
		b.WriteString(`<wps:Data><wps:LiteralData>` + xmlutil.Escape(text) + `</wps:LiteralData></wps:Data>`)
	default:
		return fmt.Errorf("wps10: input %q: unsupported value type %T", in.ID, in.Value)
	}

	b.WriteString(`</wps:Input>`)
	return nil
}

func formatAttrs(mimeType, encoding, schema string) string {
	return xmlutil.Attr("mimeType", mimeType) + xmlutil.Attr("encoding", encoding) + xmlutil.Attr("schema", schema)
}

// EncodeGetStatus is not supported by WPS 1.0.0.
func (Codec) EncodeGetStatus(string, bool) (string, error) {
	return "", protocol.ErrNotImplemented
}

// EncodeGetResult is not supported by WPS 1.0.0.
func (Codec) EncodeGetResult(string, bool) (string, error) {
	return "", protocol.ErrNotImplemented
}
