package wps20

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smnsjas/go-wps/internal/xmldoc"
	"github.com/smnsjas/go-wps/model"
	"github.com/smnsjas/go-wps/protocol"
)

func TestEncodeDescribeProcess_KVP(t *testing.T) {
	q, err := Codec{}.EncodeDescribeProcess([]string{"a", "b"}, false)
	require.NoError(t, err)
	assert.Equal(t, "service=WPS&version=2.0.0&request=DescribeProcess&identifier=a,b", q)

	values, err := url.ParseQuery(q)
	require.NoError(t, err)
	assert.Equal(t, url.Values{
		"service":    {"WPS"},
		"version":    {"2.0.0"},
		"request":    {"DescribeProcess"},
		"identifier": {"a,b"},
	}, values)
}

func TestEncodeDescribeProcess_DefaultsToAll(t *testing.T) {
	q, err := Codec{}.EncodeDescribeProcess(nil, false)
	require.NoError(t, err)
	assert.Contains(t, q, "identifier=ALL")

	body, err := Codec{}.EncodeDescribeProcess(nil, true)
	require.NoError(t, err)
	assert.Contains(t, body, "<ows:Identifier>ALL</ows:Identifier>")
}

func TestEncodeDescribeProcess_XML(t *testing.T) {
	body, err := Codec{}.EncodeDescribeProcess([]string{"a", "b"}, true)
	require.NoError(t, err)

	root, err := xmldoc.Parse([]byte(body))
	require.NoError(t, err)
	assert.True(t, root.Is(NsWPS, "DescribeProcess"))
	assert.Equal(t, []string{"a", "b"}, root.Values(ns, "ows:Identifier/text()"))

	service, _ := root.Attr("service")
	version, _ := root.Attr("version")
	assert.Equal(t, "WPS", service)
	assert.Equal(t, "2.0.0", version)
}

func TestEncodeDescribeProcess_EscapesIdentifiers(t *testing.T) {
	body, err := Codec{}.EncodeDescribeProcess([]string{`<a&'b">`}, true)
	require.NoError(t, err)
	assert.Contains(t, body, "&lt;a&amp;&apos;b&quot;&gt;")

	root, err := xmldoc.Parse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, `<a&'b">`, root.String(ns, "ows:Identifier/text()"))
}

func TestEncodeDescribeProcess_EmptyID(t *testing.T) {
	_, err := Codec{}.EncodeDescribeProcess([]string{"a", ""}, false)
	assert.ErrorIs(t, err, protocol.ErrEmptyIdentifier)
}

func TestEncodeExecute(t *testing.T) {
	ts := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	req := protocol.ExecuteRequest{
		ProcessID: "buffer",
		Async:     true,
		Inputs: []model.Input{
			{ID: "geom", Value: model.Ref{Href: "http://x/geom?a=1&b=2", MimeType: "application/gml+xml", Schema: "http://s"}},
			{ID: "post", Value: model.Ref{Href: "http://x/wfs", Body: "<GetFeature/>"}},
			{ID: "postref", Value: model.Ref{Href: "http://x/wfs", BodyReferenceHref: "http://x/body.xml"}},
			{ID: "json", Value: model.Data{Value: map[string]int{"n": 1}, MimeType: "application/json"}},
			{ID: "distance", Value: model.Literal{Value: 2.5}},
			{ID: "when", Value: model.Literal{Value: ts}},
			{ID: "flag", Value: model.Literal{Value: true}},
			{ID: "text", Value: model.Literal{Value: "a<b"}},
		},
		Outputs: []model.OutputRequest{
			{ID: "result", AsValue: true, MimeType: "application/json"},
			{ID: "log"},
		},
	}

	body, err := Codec{}.EncodeExecute(req)
	require.NoError(t, err)

	root, err := xmldoc.Parse([]byte(body))
	require.NoError(t, err)
	assert.True(t, root.Is(NsWPS, "Execute"))

	mode, _ := root.Attr("mode")
	response, _ := root.Attr("response")
	assert.Equal(t, "async", mode)
	assert.Equal(t, "document", response)
	assert.Equal(t, "buffer", root.String(ns, "ows:Identifier/text()"))

	inputs := root.All(ns, "wps:Input")
	require.Len(t, inputs, 8)

	ref := inputs[0].One(ns, "wps:Reference")
	require.NotNil(t, ref)
	href, _ := ref.AttrNS(NsXLink, "href")
	assert.Equal(t, "http://x/geom?a=1&b=2", href)
	mt, _ := ref.Attr("mimeType")
	assert.Equal(t, "application/gml+xml", mt)
	schema, _ := ref.Attr("schema")
	assert.Equal(t, "http://s", schema)
	_, hasEncoding := ref.Attr("encoding")
	assert.False(t, hasEncoding)

	assert.Equal(t, "<GetFeature/>", inputs[1].String(ns, "wps:Reference/wps:Body/text()"))
	assert.Equal(t, []string{"http://x/body.xml"}, inputs[2].Values(ns, "wps:Reference/wps:BodyReference/@xlink:href"))

	assert.Equal(t, `{"n":1}`, inputs[3].String(ns, "wps:Data/text()"))
	assert.Equal(t, []string{"application/json"}, inputs[3].Values(ns, "wps:Data/@mimeType"))
	assert.Equal(t, "2.5", inputs[4].String(ns, "wps:Data/text()"))
	assert.Equal(t, "2021-03-04T05:06:07.000Z", inputs[5].String(ns, "wps:Data/text()"))
	assert.Equal(t, "true", inputs[6].String(ns, "wps:Data/text()"))
	assert.Equal(t, "a<b", inputs[7].String(ns, "wps:Data/text()"))
	assert.Contains(t, body, "a&lt;b")

	outputs := root.All(ns, "wps:Output")
	require.Len(t, outputs, 2)
	assert.Equal(t, []string{"value", "reference"}, root.Values(ns, "wps:Output/@transmission"))
	assert.Equal(t, []string{"application/json"}, root.Values(ns, "wps:Output/@mimeType"))
}

func TestEncodeExecute_SyncRaw(t *testing.T) {
	body, err := Codec{}.EncodeExecute(protocol.ExecuteRequest{ProcessID: "p", Raw: true})
	require.NoError(t, err)
	assert.Contains(t, body, `response="raw"`)
	assert.Contains(t, body, `mode="sync"`)
}

func TestEncodeExecute_Errors(t *testing.T) {
	_, err := Codec{}.EncodeExecute(protocol.ExecuteRequest{})
	assert.ErrorIs(t, err, protocol.ErrEmptyIdentifier)

	_, err = Codec{}.EncodeExecute(protocol.ExecuteRequest{ProcessID: "p", Inputs: []model.Input{{Value: model.Literal{Value: 1}}}})
	assert.ErrorIs(t, err, protocol.ErrEmptyIdentifier)

	_, err = Codec{}.EncodeExecute(protocol.ExecuteRequest{ProcessID: "p", Inputs: []model.Input{{ID: "c", Value: model.Literal{Value: make(chan int)}}}})
	assert.Error(t, err)
}

func TestEncodeJobRequests(t *testing.T) {
	c := Codec{}

	q, err := c.EncodeGetStatus("job 1", false)
	require.NoError(t, err)
	assert.Equal(t, "service=WPS&version=2.0.0&request=GetStatus&jobid=job+1", q)

	q, err = c.EncodeGetResult("abc", false)
	require.NoError(t, err)
	assert.Equal(t, "service=WPS&version=2.0.0&request=GetResult&jobid=abc", q)

	body, err := c.EncodeGetStatus("a&b", true)
	require.NoError(t, err)
	root, err := xmldoc.Parse([]byte(body))
	require.NoError(t, err)
	assert.True(t, root.Is(NsWPS, "GetStatus"))
	assert.Equal(t, "a&b", root.String(ns, "wps:JobID/text()"))

	body, err = c.EncodeGetResult("x", true)
	require.NoError(t, err)
	assert.Contains(t, body, "<wps:GetResult ")
	assert.Contains(t, body, "<wps:JobID>x</wps:JobID>")

	_, err = c.EncodeGetStatus("", false)
	assert.ErrorIs(t, err, protocol.ErrEmptyIdentifier)
}
