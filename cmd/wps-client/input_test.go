package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smnsjas/go-wps/model"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want model.Input
	}{
		{
			name: "literal",
			in:   "distance=250",
			want: model.Input{ID: "distance", Value: model.Literal{Value: "250"}},
		},
		{
			name: "literal keeps equals in value",
			in:   "expr=a=b",
			want: model.Input{ID: "expr", Value: model.Literal{Value: "a=b"}},
		},
		{
			name: "reference",
			in:   "geom=@https://data.example.org/roads.gml;mimeType=application/gml+xml",
			want: model.Input{ID: "geom", Value: model.Ref{
				Href:     "https://data.example.org/roads.gml",
				MimeType: "application/gml+xml",
			}},
		},
		{
			name: "reference with body",
			in:   "wfs=@https://wfs.example.org;body=<GetFeature/>;bodyRef=https://b",
			want: model.Input{ID: "wfs", Value: model.Ref{
				Href:              "https://wfs.example.org",
				Body:              "<GetFeature/>",
				BodyReferenceHref: "https://b",
			}},
		},
		{
			name: "inline data",
			in:   "table=a,b;MIMETYPE=text/csv;encoding=UTF-8",
			want: model.Input{ID: "table", Value: model.Data{
				Value:    "a,b",
				MimeType: "text/csv",
				Encoding: "UTF-8",
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseInput(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInputErrors(t *testing.T) {
	for _, in := range []string{
		"novalue",
		"=x",
		"a=b;color=red",
		"a=b;body=<x/>",
	} {
		_, err := parseInput(in)
		assert.Error(t, err, in)
	}
}

func TestParseOutput(t *testing.T) {
	out, err := parseOutput("buffered;value;mimeType=application/json")
	require.NoError(t, err)
	assert.Equal(t, model.OutputRequest{ID: "buffered", AsValue: true, MimeType: "application/json"}, out)

	out, err = parseOutput("report")
	require.NoError(t, err)
	assert.Equal(t, model.OutputRequest{ID: "report"}, out)

	_, err = parseOutput(";value")
	assert.Error(t, err)

	_, err = parseOutput("x;inline")
	assert.Error(t, err)
}

func TestSplitOptions(t *testing.T) {
	head, opts, err := splitOptions("a;;Schema=s")
	require.NoError(t, err)
	assert.Equal(t, "a", head)
	assert.Equal(t, map[string]string{"schema": "s"}, opts)
}
