package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/smnsjas/go-wps/model"
)

func testCapabilities() *model.Capabilities {
	return &model.Capabilities{
		Version: "2.0.0",
		Title:   "Demo WPS",
		ProcessSummaries: []model.ProcessSummary{{
			Identification: model.Identification{ID: "buffer", Title: "Buffer"},
			Version:        "1.1",
			AllowsSync:     true,
			AllowsValue:    true,
		}},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]format{"table": formatTable, "JSON": formatJSON, "yaml": formatYAML} {
		got, err := parseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := parseFormat("xml")
	assert.Error(t, err)
}

func TestPrinterTable(t *testing.T) {
	var buf bytes.Buffer
	caps := testCapabilities()
	require.NoError(t, printer{w: &buf, format: formatTable}.print(caps, renderCapabilities(caps)))

	out := buf.String()
	assert.Contains(t, out, "Demo WPS (WPS 2.0.0)")
	assert.Contains(t, out, "buffer")
	assert.Contains(t, out, "value")
}

func TestPrinterJSON(t *testing.T) {
	var buf bytes.Buffer
	caps := testCapabilities()
	require.NoError(t, printer{w: &buf, format: formatJSON}.print(caps, renderCapabilities(caps)))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "2.0.0", got["version"])
	summaries, ok := got["processSummaries"].([]any)
	require.True(t, ok)
	assert.Len(t, summaries, 1)
}

func TestPrinterYAML(t *testing.T) {
	var buf bytes.Buffer
	caps := testCapabilities()
	require.NoError(t, printer{w: &buf, format: formatYAML}.print(caps, renderCapabilities(caps)))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Demo WPS", got["title"])
	assert.Contains(t, buf.String(), "id: buffer")
}

func TestRenderResultNested(t *testing.T) {
	r := &model.Result{
		JobID: "j-1",
		Outputs: []model.Output{
			{ID: "ref", Reference: "http://x/out.tif"},
			{ID: "group", SubOutputs: []model.Output{
				{ID: "inner", Data: &model.OutputData{Value: "  42\n"}},
			}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, printer{w: &buf, format: formatTable}.print(r, renderResult(r)))

	out := buf.String()
	assert.Contains(t, out, "Job j-1")
	assert.Contains(t, out, "http://x/out.tif")
	assert.Contains(t, out, "group/inner")
	assert.Contains(t, out, "42")
}

func TestRenderStatus(t *testing.T) {
	pct := 40
	next := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	info := &model.StatusInfo{JobID: "j-2", Status: model.StatusRunning, PercentCompleted: &pct, NextPoll: next}

	var buf bytes.Buffer
	require.NoError(t, printer{w: &buf, format: formatTable}.print(info, renderStatus(info)))
	assert.Contains(t, buf.String(), "40%")
	assert.Contains(t, buf.String(), "2024-05-01T12:00:00Z")
}

func TestFormats(t *testing.T) {
	d := model.DataDescription{Formats: []model.FormatDescription{
		{MimeType: "text/xml", IsDefault: true},
		{MimeType: "application/json"},
	}}
	assert.Equal(t, "text/xml*, application/json", formats(d))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "a b", truncate(" a\n b ", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "", timeOrEmpty(time.Time{}))
}
