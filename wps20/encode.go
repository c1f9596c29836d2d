package wps20

import (
	"fmt"
	"strings"

	"github.com/smnsjas/go-wps/internal/xmlutil"
	"github.com/smnsjas/go-wps/model"
	"github.com/smnsjas/go-wps/protocol"
)

// preamble is the namespace and service attribute block of every 2.0
// request root element.
const preamble = `xmlns:wps="` + NsWPS + `" xmlns:ows="` + NsOWS + `" xmlns:xlink="` + NsXLink +
	`" xmlns:xsi="` + NsXsi + `" xsi:schemaLocation="` + SchemaLocation + `" service="WPS" version="2.0.0"`

// allProcesses is the identifier that selects every process.
const allProcesses = "ALL"

func kvp(request string) *xmlutil.KVP {
	return new(xmlutil.KVP).Add("service", "WPS").Add("version", "2.0.0").Add("request", request)
}

// EncodeDescribeProcess builds a DescribeProcess request. No ids selects
// every process.
func (Codec) EncodeDescribeProcess(ids []string, xmlBody bool) (string, error) {
	if len(ids) == 0 {
		ids = []string{allProcesses}
	}
	for _, id := range ids {
		if id == "" {
			return "", fmt.Errorf("wps20: DescribeProcess: %w", protocol.ErrEmptyIdentifier)
		}
	}

	if !xmlBody {
		return kvp("DescribeProcess").Add("identifier", strings.Join(ids, ",")).String(), nil
	}

	var b strings.Builder
	b.WriteString(`<wps:DescribeProcess ` + preamble + `>`)
	for _, id := range ids {
		b.WriteString(`<ows:Identifier>` + xmlutil.Escape(id) + `</ows:Identifier>`)
	}
	b.WriteString(`</wps:DescribeProcess>`)
	return b.String(), nil
}

// EncodeExecute builds an Execute request body. Execute has no KVP form in
// 2.0.
func (Codec) EncodeExecute(req protocol.ExecuteRequest) (string, error) {
	if req.ProcessID == "" {
		return "", fmt.Errorf("wps20: Execute: %w", protocol.ErrEmptyIdentifier)
	}

	response, mode := "document", "sync"
	if req.Raw {
		response = "raw"
	}
	if req.Async {
		mode = "async"
	}

	var b strings.Builder
	b.WriteString(`<wps:Execute ` + preamble + ` response="` + response + `" mode="` + mode + `">`)
	b.WriteString(`<ows:Identifier>` + xmlutil.Escape(req.ProcessID) + `</ows:Identifier>`)

	for _, in := range req.Inputs {
		if err := writeInput(&b, in); err != nil {
			return "", err
		}
	}
	for _, out := range req.Outputs {
		if out.ID == "" {
			return "", fmt.Errorf("wps20: Execute output: %w", protocol.ErrEmptyIdentifier)
		}
		b.WriteString(`<wps:Output` + xmlutil.Attr("id", out.ID) + ` transmission="` + out.Transmission() + `"` +
			formatAttrs(out.MimeType, out.Encoding, out.Schema) + `/>`)
	}

	b.WriteString(`</wps:Execute>`)
	return b.String(), nil
}

func writeInput(b *strings.Builder, in model.Input) error {
	if in.ID == "" {
		return fmt.Errorf("wps20: Execute input: %w", protocol.ErrEmptyIdentifier)
	}
	b.WriteString(`<wps:Input` + xmlutil.Attr("id", in.ID) + `>`)

	switch v := in.Value.(type) {
	case model.Ref:
		b.WriteString(`<wps:Reference` + xmlutil.Attr("xlink:href", v.Href) + formatAttrs(v.MimeType, v.Encoding, v.Schema))
		switch {
		case v.Body != "":
			b.WriteString(`><wps:Body>` + xmlutil.Escape(v.Body) + `</wps:Body></wps:Reference>`)
		case v.BodyReferenceHref != "":
			b.WriteString(`><wps:BodyReference` + xmlutil.Attr("xlink:href", v.BodyReferenceHref) + `/></wps:Reference>`)
		default:
			b.WriteString(`/>`)
		}
	case model.Data:
		text, err := model.EncodeLiteral(v.Value)
		if err != nil {
			return fmt.Errorf("wps20: input %q: %w", in.ID, err)
		}
		b.WriteString(`<wps:Data` + formatAttrs(v.MimeType, v.Encoding, v.Schema) + `>` + xmlutil.Escape(text) + `</wps:Data>`)
	case model.Literal:
		if err := writeData(b, in.ID, v.Value); err != nil {
			return err
		}
	case nil:
		if err := writeData(b, in.ID, nil); err != nil {
			return err
		}
	default:
		return fmt.Errorf("wps20: input %q: unsupported value type %T", in.ID, in.Value)
	}

	b.WriteString(`</wps:Input>`)
	return nil
}

func writeData(b *strings.Builder, id string, value any) error {
	text, err := model.EncodeLiteral(value)
	if err != nil {
		return fmt.Errorf("wps20: input %q: %w", id, err)
	}
	b.WriteString(`<wps:Data>` + xmlutil.Escape(text) + `</wps:Data>`)
	return nil
}

func formatAttrs(mimeType, encoding, schema string) string {
	return xmlutil.Attr("mimeType", mimeType) + xmlutil.Attr("encoding", encoding) + xmlutil.Attr("schema", schema)
}

// EncodeGetStatus builds a GetStatus request.
func (Codec) EncodeGetStatus(jobID string, xmlBody bool) (string, error) {
	return encodeJobRequest("GetStatus", jobID, xmlBody)
}

// EncodeGetResult builds a GetResult request.
func (Codec) EncodeGetResult(jobID string, xmlBody bool) (string, error) {
	return encodeJobRequest("GetResult", jobID, xmlBody)
}

func encodeJobRequest(op, jobID string, xmlBody bool) (string, error) {
	if jobID == "" {
		return "", fmt.Errorf("wps20: %s: %w", op, protocol.ErrEmptyIdentifier)
	}
	if !xmlBody {
		return kvp(op).Add("jobid", jobID).String(), nil
	}
	return `<wps:` + op + ` ` + preamble + `><wps:JobID>` + xmlutil.Escape(jobID) + `</wps:JobID></wps:` + op + `>`, nil
}
