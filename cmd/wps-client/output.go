package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/smnsjas/go-wps/model"
)

type format string

const (
	formatTable format = "table"
	formatJSON  format = "json"
	formatYAML  format = "yaml"
)

func parseFormat(s string) (format, error) {
	switch f := format(strings.ToLower(s)); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// printer writes values in the selected format. Table rendering is given
// by the caller; json and yaml marshal the value itself.
type printer struct {
	w      io.Writer
	format format
}

func (p printer) print(v any, render func(table.Writer)) error {
	switch p.format {
	case formatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(p.w)
	tw.SetStyle(table.StyleLight)
	render(tw)
	tw.Render()
	return nil
}

func renderCapabilities(caps *model.Capabilities) func(table.Writer) {
	return func(tw table.Writer) {
		tw.SetTitle(fmt.Sprintf("%s (WPS %s)", caps.Title, caps.Version))
		tw.AppendHeader(table.Row{"ID", "Title", "Version", "Sync", "Async", "Transmission"})
		for _, ps := range caps.ProcessSummaries {
			tw.AppendRow(table.Row{ps.ID, ps.Title, ps.Version, yesNo(ps.AllowsSync), yesNo(ps.AllowsAsync), transmission(ps)})
		}
	}
}

func renderDescriptions(descs []*model.ProcessDescription) func(table.Writer) {
	return func(tw table.Writer) {
		tw.AppendHeader(table.Row{"Process", "Kind", "ID", "Title", "Formats"})
		for _, d := range descs {
			for _, in := range d.Inputs {
				tw.AppendRow(table.Row{d.ID, "input", in.ID, in.Title, formats(in.DataDescription)})
			}
			for _, out := range d.Outputs {
				tw.AppendRow(table.Row{d.ID, "output", out.ID, out.Title, formats(out.DataDescription)})
			}
			tw.AppendSeparator()
		}
	}
}

func renderStatus(info *model.StatusInfo) func(table.Writer) {
	return func(tw table.Writer) {
		tw.AppendHeader(table.Row{"Job", "Status", "Progress", "Next poll", "Expires"})
		progress := ""
		if info.PercentCompleted != nil {
			progress = strconv.Itoa(*info.PercentCompleted) + "%"
		}
		tw.AppendRow(table.Row{info.JobID, info.Status, progress, timeOrEmpty(info.NextPoll), timeOrEmpty(info.ExpirationDate)})
	}
}

func renderResult(r *model.Result) func(table.Writer) {
	return func(tw table.Writer) {
		if r.JobID != "" {
			tw.SetTitle("Job " + r.JobID)
		}
		tw.AppendHeader(table.Row{"Output", "Kind", "Value"})
		appendOutputs(tw, "", r.Outputs)
	}
}

func appendOutputs(tw table.Writer, prefix string, outputs []model.Output) {
	for _, o := range outputs {
		id := prefix + o.ID
		switch o.Kind() {
		case model.OutputReference:
			tw.AppendRow(table.Row{id, o.Kind(), o.Reference})
		case model.OutputInline:
			tw.AppendRow(table.Row{id, o.Kind(), truncate(o.Data.Value, 80)})
		case model.OutputNested:
			appendOutputs(tw, id+"/", o.SubOutputs)
		default:
			tw.AppendRow(table.Row{id, o.Kind(), ""})
		}
	}
}

func formats(d model.DataDescription) string {
	mts := make([]string, 0, len(d.Formats))
	for _, f := range d.Formats {
		mt := f.MimeType
		if f.IsDefault {
			mt += "*"
		}
		mts = append(mts, mt)
	}
	return strings.Join(mts, ", ")
}

func transmission(ps model.ProcessSummary) string {
	var modes []string
	if ps.AllowsValue {
		modes = append(modes, "value")
	}
	if ps.AllowsReference {
		modes = append(modes, "reference")
	}
	return strings.Join(modes, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func timeOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
