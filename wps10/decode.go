package wps10

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/smnsjas/go-wps/internal/xmldoc"
	"github.com/smnsjas/go-wps/model"
	"github.com/smnsjas/go-wps/ows"
	"github.com/smnsjas/go-wps/protocol"
)

// Codec encodes and decodes WPS 1.0.0 documents. The zero value is ready
// to use.
type Codec struct{}

var _ protocol.Codec = Codec{}

// Version returns protocol.V10.
func (Codec) Version() protocol.Version {
	return protocol.V10
}

// DecodeCapabilities checks the root element and returns the announced
// version. No other capabilities content is decoded for 1.0.0.
func (Codec) DecodeCapabilities(data []byte) (*model.Capabilities, error) {
	root, err := protocol.ParseRoot(data, protocol.RootCapabilities)
	if err != nil {
		return nil, err
	}
	caps := &model.Capabilities{
		Keywords:          []string{},
		Profiles:          []string{},
		AccessConstraints: []string{},
		ProcessSummaries:  []model.ProcessSummary{},
	}
	caps.Version, _ = root.Attr("version")
	return caps, nil
}

// DecodeProcessDescriptions decodes a wps:ProcessDescriptions document.
func (Codec) DecodeProcessDescriptions(data []byte) ([]*model.ProcessDescription, error) {
	root, err := protocol.ParseRoot(data, rootProcessDescriptions)
	if err != nil {
		return nil, err
	}
	lang, _ := root.AttrNS(xmldoc.NamespaceXML, "lang")

	nodes := root.All(ns, "(ProcessDescription|wps:ProcessDescription)")
	descs := make([]*model.ProcessDescription, 0, len(nodes))
	for _, n := range nodes {
		var inputs []model.InputDescription
		for _, in := range n.All(ns, "DataInputs/Input") {
			dd, err := inputData(in)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, model.InputDescription{
				Identification:  identification(in),
				DataDescription: dd,
				SubInputs:       []model.InputDescription{},
			})
		}

		var outputs []model.OutputDescription
		for _, out := range n.All(ns, "ProcessOutputs/Output") {
			outputs = append(outputs, model.OutputDescription{
				Identification:  identification(out),
				DataDescription: outputData(out),
				SubOutputs:      []model.OutputDescription{},
			})
		}

		descs = append(descs, model.NewProcessDescription(summary(n), lang, inputs, outputs))
	}
	return descs, nil
}

// DecodeStatusInfo decodes the status part of a wps:ExecuteResponse. The
// job identifier is the statusLocation attribute.
func (Codec) DecodeStatusInfo(data []byte) (*model.StatusInfo, error) {
	root, err := protocol.ParseRoot(data, rootExecuteResponse)
	if err != nil {
		return nil, err
	}
	return statusInfo(root)
}

// DecodeResult decodes the process outputs of a wps:ExecuteResponse.
func (Codec) DecodeResult(data []byte) (*model.Result, error) {
	root, err := protocol.ParseRoot(data, rootExecuteResponse)
	if err != nil {
		return nil, err
	}
	if _, err := statusInfo(root); err != nil {
		return nil, err
	}
	return result(root)
}

// DecodeExecuteResponse classifies a wps:ExecuteResponse. A succeeded
// response decodes to a Result, possibly with no outputs, as does one that
// carries outputs without any status; anything else decodes to its status.
// A ProcessFailed status with an embedded exception report is returned as
// an *ows.Exception error.
func (Codec) DecodeExecuteResponse(data []byte) (*model.StatusInfo, *model.Result, error) {
	root, err := protocol.ParseRoot(data, rootExecuteResponse)
	if err != nil {
		return nil, nil, err
	}
	info, err := statusInfo(root)
	if err != nil {
		return nil, nil, err
	}
	hasOutputs := root.One(ns, "wps:ProcessOutputs/wps:Output") != nil
	if info.Status == model.StatusSucceeded || (hasOutputs && info.Status == "") {
		r, err := result(root)
		return nil, r, err
	}
	return info, nil, nil
}

func identification(n *xmldoc.Node) model.Identification {
	return model.Identification{
		ID:       n.String(ns, "ows:Identifier/text()"),
		Title:    n.String(ns, "ows:Title/text()"),
		Abstract: n.String(ns, "ows:Abstract/text()"),
		Keywords: strs(n.Values(ns, "ows:Keywords/ows:Keyword/text()")),
		Metadata: metadata(n),
	}
}

func metadata(n *xmldoc.Node) []model.Metadata {
	out := []model.Metadata{}
	for _, m := range n.All(ns, "ows:Metadata") {
		var md model.Metadata
		md.Href, _ = m.AttrNS(NsXLink, "href")
		md.Role, _ = m.AttrNS(NsXLink, "role")
		md.Title, _ = m.AttrNS(NsXLink, "title")
		out = append(out, md)
	}
	return out
}

// summary fills the identification of a ProcessDescription. 1.0.0 has no
// job control negotiation, so the flags are fixed.
func summary(n *xmldoc.Node) model.ProcessSummary {
	s := model.ProcessSummary{
		Identification: identification(n),
		AllowsSync:     true,
		AllowsAsync:    true,
		AllowsDismiss:  true,
	}
	if v, ok := n.AttrNS(NsWPS, "processVersion"); ok {
		s.Version = v
	} else {
		s.Version, _ = n.Attr("processVersion")
	}
	return s
}

func inputData(in *xmldoc.Node) (model.DataDescription, error) {
	dd := model.DataDescription{
		Formats: []model.FormatDescription{},
		Domains: []model.LiteralDataDomain{},
	}

	var maxMB *int
	if v, ok := in.Value(ns, "ComplexData/@maximumMegabytes"); ok {
		mb, err := strconv.Atoi(v)
		if err != nil {
			return dd, fmt.Errorf("wps10: invalid maximumMegabytes %q: %w", v, err)
		}
		maxMB = &mb
	}
	dd.Formats = formats(in, "ComplexData", maxMB)

	for _, lit := range in.All(ns, "LiteralData") {
		dd.Domains = append(dd.Domains, literalDomain(lit))
	}
	return dd, nil
}

func outputData(out *xmldoc.Node) model.DataDescription {
	dd := model.DataDescription{
		Formats: formats(out, "ComplexOutput", nil),
		Domains: []model.LiteralDataDomain{},
	}
	for _, lit := range out.All(ns, "LiteralOutput") {
		dd.Domains = append(dd.Domains, literalDomain(lit))
	}
	return dd
}

// formats reads <container>/Default/Format followed by
// <container>/Supported/Format. Every format inherits maxMB.
func formats(n *xmldoc.Node, container string, maxMB *int) []model.FormatDescription {
	out := []model.FormatDescription{}
	add := func(path string, isDefault bool) {
		for _, f := range n.All(ns, container+"/"+path) {
			out = append(out, model.FormatDescription{
				MimeType:         f.String(ns, "MimeType/text()"),
				Encoding:         f.String(ns, "Encoding/text()"),
				Schema:           f.String(ns, "Schema/text()"),
				MaximumMegabytes: maxMB,
				IsDefault:        isDefault,
			})
		}
	}
	add("Default/Format", true)
	add("Supported/Format", false)
	return out
}

func literalDomain(lit *xmldoc.Node) model.LiteralDataDomain {
	uom, ok := lit.Value(ns, "UOMs/Default/ows:UOM/text()")
	if !ok {
		uom = lit.String(ns, "UOMs/Supported/ows:UOM/text()")
	}
	dom := model.LiteralDataDomain{
		DataType:      lit.String(ns, "ows:DataType/text()"),
		UOM:           uom,
		DefaultValue:  lit.String(ns, "DefaultValue/text()"),
		AllowedValues: []model.AllowedValue{},
		IsDefault:     true,
	}
	for _, v := range lit.All(ns, "ows:AllowedValues/(ows:Value|ows:Range)") {
		if v.Local() == "Range" {
			dom.AllowedValues = append(dom.AllowedValues, model.AllowedValue{
				IsRange: true,
				Minimum: v.String(ns, "ows:MinimumValue/text()"),
				Maximum: v.String(ns, "ows:MaximumValue/text()"),
			})
			continue
		}
		dom.AllowedValues = append(dom.AllowedValues, model.AllowedValue{Value: strings.TrimSpace(v.Text())})
	}
	return dom
}

// statusElements maps 1.0.0 status element names to job states. There is
// no paused state in the job model for 1.0.0 sources, so ProcessPaused is
// reported as Running.
var statusElements = map[string]model.Status{
	"ProcessAccepted":  model.StatusAccepted,
	"ProcessStarted":   model.StatusRunning,
	"ProcessPaused":    model.StatusRunning,
	"ProcessSucceeded": model.StatusSucceeded,
	"ProcessFailed":    model.StatusFailed,
}

func statusInfo(root *xmldoc.Node) (*model.StatusInfo, error) {
	info := &model.StatusInfo{}
	info.StatusLocation, _ = root.Attr("statusLocation")
	info.JobID = info.StatusLocation

	el := root.One(ns, "wps:Status/(wps:ProcessAccepted|wps:ProcessStarted|wps:ProcessSucceeded|wps:ProcessPaused|wps:ProcessFailed)")
	if el == nil {
		return info, nil
	}
	info.Status = statusElements[el.Local()]

	if info.Status == model.StatusFailed {
		if report := el.One(ns, "ows:ExceptionReport"); report != nil {
			exc, err := ows.FromNode(report)
			if err != nil {
				return nil, err
			}
			return nil, exc
		}
	}

	if v, ok := el.Attr("percentCompleted"); ok && strings.TrimSpace(v) != "" {
		pct, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("wps10: invalid percentCompleted %q: %w", v, err)
		}
		info.PercentCompleted = &pct
	}
	return info, nil
}

func result(root *xmldoc.Node) (*model.Result, error) {
	r := &model.Result{Outputs: []model.Output{}}
	r.JobID, _ = root.Attr("statusLocation")

	for _, n := range root.All(ns, "wps:ProcessOutputs/wps:Output") {
		out, err := resultOutput(n)
		if err != nil {
			return nil, err
		}
		r.Outputs = append(r.Outputs, out)
	}
	return r, nil
}

func resultOutput(n *xmldoc.Node) (model.Output, error) {
	out := model.Output{ID: n.String(ns, "ows:Identifier/text()")}

	if ref := n.One(ns, "wps:Reference"); ref != nil {
		href, ok := ref.Attr("href")
		if !ok {
			href, _ = ref.AttrNS(NsXLink, "href")
		}
		out.Reference = href
		return out, nil
	}

	if lit := n.One(ns, "wps:Data/wps:LiteralData"); lit != nil {
		data := &model.OutputData{Value: strings.TrimSpace(lit.Text())}
		data.DataType, _ = lit.Attr("dataType")
		data.UOM, _ = lit.Attr("uom")
		out.Data = data
		return out, nil
	}

	cx := n.One(ns, "wps:Data/(wps:ComplexData|wps:BoundingBoxData)")
	if cx == nil {
		return out, nil
	}
	data := &model.OutputData{Complex: true}
	data.MimeType, _ = cx.Attr("mimeType")
	data.Encoding, _ = cx.Attr("encoding")
	data.Schema, _ = cx.Attr("schema")
	if cx.HasChildElements() {
		inner, err := cx.InnerXML()
		if err != nil {
			return out, err
		}
		data.Value = strings.TrimSpace(inner)
	} else {
		data.Value = strings.TrimSpace(cx.Text())
	}
	out.Data = data
	return out, nil
}

func strs(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
