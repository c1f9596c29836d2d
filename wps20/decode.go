package wps20

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/smnsjas/go-wps/internal/xmldoc"
	"github.com/smnsjas/go-wps/internal/xmlutil"
	"github.com/smnsjas/go-wps/model"
	"github.com/smnsjas/go-wps/protocol"
)

// Codec encodes and decodes WPS 2.0.0 documents. The zero value is ready
// to use.
type Codec struct{}

var _ protocol.Codec = Codec{}

// Version returns protocol.V20.
func (Codec) Version() protocol.Version {
	return protocol.V20
}

// DecodeCapabilities decodes a wps:Capabilities document.
func (Codec) DecodeCapabilities(data []byte) (*model.Capabilities, error) {
	root, err := protocol.ParseRoot(data, protocol.RootCapabilities)
	if err != nil {
		return nil, err
	}

	si := root.One(ns, "ows:ServiceIdentification")
	sp := root.One(ns, "ows:ServiceProvider")
	ident := identification(si)

	caps := &model.Capabilities{
		Title:             ident.Title,
		Abstract:          ident.Abstract,
		Keywords:          ident.Keywords,
		Profiles:          strs(si.Values(ns, "ows:Profile/text()")),
		Fees:              si.String(ns, "ows:Fees/text()"),
		AccessConstraints: strs(si.Values(ns, "ows:AccessConstraints/text()")),
		ProviderName:      sp.String(ns, "ows:ProviderName/text()"),
		ProcessSummaries:  []model.ProcessSummary{},
	}
	caps.Version, _ = root.Attr("version")

	for _, n := range root.All(ns, "wps:Contents/wps:ProcessSummary") {
		caps.ProcessSummaries = append(caps.ProcessSummaries, summary(n, n))
	}
	return caps, nil
}

// DecodeProcessDescriptions decodes a wps:ProcessOfferings document. A bare
// wps:ProcessOffering root is accepted as a single offering.
func (Codec) DecodeProcessDescriptions(data []byte) ([]*model.ProcessDescription, error) {
	root, err := protocol.ParseRoot(data, rootProcessOfferings, rootProcessOffering)
	if err != nil {
		return nil, err
	}

	offerings := []*xmldoc.Node{root}
	if root.Local() == rootProcessOfferings {
		offerings = root.All(ns, "wps:ProcessOffering")
	}

	descs := make([]*model.ProcessDescription, 0, len(offerings))
	for _, off := range offerings {
		proc := off.One(ns, "wps:Process")
		if proc == nil {
			return nil, fmt.Errorf("wps20: ProcessOffering without wps:Process")
		}
		inputs, err := inputDescriptions(proc)
		if err != nil {
			return nil, err
		}
		outputs, err := outputDescriptions(proc)
		if err != nil {
			return nil, err
		}
		lang, _ := proc.AttrNS(xmldoc.NamespaceXML, "lang")
		descs = append(descs, model.NewProcessDescription(summary(proc, off), lang, inputs, outputs))
	}
	return descs, nil
}

// DecodeStatusInfo decodes a wps:StatusInfo document.
func (Codec) DecodeStatusInfo(data []byte) (*model.StatusInfo, error) {
	root, err := protocol.ParseRoot(data, rootStatusInfo)
	if err != nil {
		return nil, err
	}
	return statusInfo(root)
}

// DecodeResult decodes a wps:Result document.
func (Codec) DecodeResult(data []byte) (*model.Result, error) {
	root, err := protocol.ParseRoot(data, rootResult)
	if err != nil {
		return nil, err
	}
	return result(root)
}

// DecodeStatusInfoOrResult dispatches on the root element: a Result yields
// the result, a StatusInfo yields the status and an ExceptionReport is
// returned as an *ows.Exception error. Exactly one of the first two return
// values is non-nil on success.
func (Codec) DecodeStatusInfoOrResult(data []byte) (*model.StatusInfo, *model.Result, error) {
	root, err := protocol.ParseRoot(data, rootResult, rootStatusInfo)
	if err != nil {
		return nil, nil, err
	}
	if root.Local() == rootResult {
		r, err := result(root)
		return nil, r, err
	}
	info, err := statusInfo(root)
	return info, nil, err
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

// summary reads identification from meta and the offering attributes
// (processVersion, jobControlOptions, outputTransmission) from attrs.
func summary(meta, attrs *xmldoc.Node) model.ProcessSummary {
	s := model.ProcessSummary{Identification: identification(meta)}
	s.Version, _ = attrs.Attr("processVersion")

	jco, _ := attrs.Attr("jobControlOptions")
	jobControl := strings.Fields(jco)
	s.AllowsSync = slices.Contains(jobControl, tokenSyncExecute)
	s.AllowsAsync = slices.Contains(jobControl, tokenAsyncExecute)
	s.AllowsDismiss = slices.Contains(jobControl, tokenDismiss)

	ot, _ := attrs.Attr("outputTransmission")
	transmission := strings.Fields(ot)
	s.AllowsValue = slices.Contains(transmission, tokenValue)
	s.AllowsReference = slices.Contains(transmission, tokenReference)
	return s
}

func inputDescriptions(parent *xmldoc.Node) ([]model.InputDescription, error) {
	out := []model.InputDescription{}
	for _, n := range parent.All(ns, "wps:Input") {
		dd, err := dataDescription(n)
		if err != nil {
			return nil, err
		}
		subs, err := inputDescriptions(n)
		if err != nil {
			return nil, err
		}
		out = append(out, model.InputDescription{
			Identification:  identification(n),
			DataDescription: dd,
			SubInputs:       subs,
		})
	}
	return out, nil
}

func outputDescriptions(parent *xmldoc.Node) ([]model.OutputDescription, error) {
	out := []model.OutputDescription{}
	for _, n := range parent.All(ns, "wps:Output") {
		dd, err := dataDescription(n)
		if err != nil {
			return nil, err
		}
		subs, err := outputDescriptions(n)
		if err != nil {
			return nil, err
		}
		out = append(out, model.OutputDescription{
			Identification:  identification(n),
			DataDescription: dd,
			SubOutputs:      subs,
		})
	}
	return out, nil
}

func dataDescription(n *xmldoc.Node) (model.DataDescription, error) {
	dd := model.DataDescription{
		Formats: []model.FormatDescription{},
		Domains: []model.LiteralDataDomain{},
	}

	// LiteralDataDomain is unqualified in the 2.0 schema but some servers
	// put it in the WPS namespace.
	for _, d := range n.All(ns, "wps:LiteralData/*:LiteralDataDomain") {
		dd.Domains = append(dd.Domains, literalDomain(d))
	}

	for _, f := range n.All(ns, "(wps:LiteralData|wps:ComplexData|wps:BoundingBoxData)/wps:Format") {
		fd := model.FormatDescription{IsDefault: attrBool(f, "default")}
		fd.MimeType, _ = f.Attr("mimeType")
		fd.Encoding, _ = f.Attr("encoding")
		fd.Schema, _ = f.Attr("schema")
		if v, ok := f.Attr("maximumMegabytes"); ok {
			mb, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return dd, fmt.Errorf("wps20: invalid maximumMegabytes %q: %w", v, err)
			}
			fd.MaximumMegabytes = &mb
		}
		dd.Formats = append(dd.Formats, fd)
	}
	return dd, nil
}

func literalDomain(d *xmldoc.Node) model.LiteralDataDomain {
	dom := model.LiteralDataDomain{
		DataType:      d.String(ns, "ows:DataType/text()"),
		UOM:           d.String(ns, "ows:UOM/text()"),
		DefaultValue:  d.String(ns, "ows:DefaultValue/text()"),
		AllowedValues: []model.AllowedValue{},
		IsDefault:     attrBool(d, "default"),
	}
	for _, v := range d.All(ns, "ows:AllowedValues/(ows:Value|ows:Range)") {
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

func statusInfo(root *xmldoc.Node) (*model.StatusInfo, error) {
	info := &model.StatusInfo{
		JobID:  root.String(ns, "wps:JobID/text()"),
		Status: model.ParseStatus(root.String(ns, "wps:Status/text()")),
	}

	var err error
	if info.ExpirationDate, err = dateField(root, "wps:ExpirationDate/text()"); err != nil {
		return nil, err
	}
	if info.EstimatedCompletion, err = dateField(root, "wps:EstimatedCompletion/text()"); err != nil {
		return nil, err
	}
	if info.NextPoll, err = dateField(root, "wps:NextPoll/text()"); err != nil {
		return nil, err
	}
	if v, ok := root.Value(ns, "wps:PercentCompleted/text()"); ok && v != "" {
		pct, err := parsePercent(v)
		if err != nil {
			return nil, err
		}
		info.PercentCompleted = &pct
	}
	return info, nil
}

func result(root *xmldoc.Node) (*model.Result, error) {
	r := &model.Result{
		JobID:   root.String(ns, "wps:JobID/text()"),
		Outputs: []model.Output{},
	}
	var err error
	if r.ExpirationDate, err = dateField(root, "wps:ExpirationDate/text()"); err != nil {
		return nil, err
	}
	for _, n := range root.All(ns, "wps:Output") {
		out, err := resultOutput(n)
		if err != nil {
			return nil, err
		}
		r.Outputs = append(r.Outputs, out)
	}
	return r, nil
}

// resultOutput applies, in order: reference, literal value, nested
// outputs, then the first child as complex data.
func resultOutput(n *xmldoc.Node) (model.Output, error) {
	out := model.Output{}
	out.ID, _ = n.Attr("id")

	if ref := n.One(ns, "wps:Reference"); ref != nil {
		out.Reference, _ = ref.AttrNS(NsXLink, "href")
		return out, nil
	}

	lit := n.One(ns, "wps:LiteralValue")
	if lit == nil {
		lit = n.One(ns, "wps:Data/wps:LiteralValue")
	}
	if lit != nil {
		data := &model.OutputData{Value: strings.TrimSpace(lit.Text())}
		data.DataType, _ = lit.Attr("dataType")
		data.UOM, _ = lit.Attr("uom")
		out.Data = data
		return out, nil
	}

	if subs := n.All(ns, "wps:Output"); len(subs) > 0 {
		for _, s := range subs {
			so, err := resultOutput(s)
			if err != nil {
				return out, err
			}
			out.SubOutputs = append(out.SubOutputs, so)
		}
		return out, nil
	}

	children := n.Children()
	if len(children) == 0 {
		return out, nil
	}
	child := children[0]
	data := &model.OutputData{Complex: true}
	data.MimeType, _ = child.Attr("mimeType")
	data.Encoding, _ = child.Attr("encoding")
	data.Schema, _ = child.Attr("schema")
	if child.HasChildElements() {
		inner, err := child.InnerXML()
		if err != nil {
			return out, err
		}
		data.Value = strings.TrimSpace(inner)
	} else {
		data.Value = strings.TrimSpace(child.Text())
	}
	out.Data = data
	return out, nil
}

func dateField(n *xmldoc.Node, path string) (time.Time, error) {
	v, ok := n.Value(ns, path)
	if !ok {
		return time.Time{}, nil
	}
	t, err := xmlutil.ParseTime(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("wps20: %s: %w", strings.TrimSuffix(path, "/text()"), err)
	}
	return t, nil
}

func parsePercent(v string) (int, error) {
	if i, err := strconv.Atoi(v); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("wps20: invalid PercentCompleted %q: %w", v, err)
	}
	return int(f), nil
}

func attrBool(n *xmldoc.Node, name string) bool {
	v, _ := n.Attr(name)
	return strings.TrimSpace(v) == "true"
}

func strs(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
