package elog

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryXML(t *testing.T) {
	e := NewEntry("Sensor/TS1 configuration", "reading <nominal> & stable")
	e.Tags = []string{"Test"}
	e.SetValue("Author", "jdoe")
	e.SetValue("URL", "https://example.slack.com/archives/C1/p1500000000000100")
	e.SetValue("Author", "jane")

	out, err := e.XML()
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, s, `<entry category="Sensor/TS1 configuration" formname="Slack entry" tags="Test">`)
	assert.Contains(t, s, `<form name="Slack entry"><field name="Author">jane</field><field name="URL">https://example.slack.com/archives/C1/p1500000000000100</field></form>`)
	assert.Contains(t, s, `<text preformatted="no">reading &lt;nominal&gt; &amp; stable</text>`)
	assert.NotContains(t, s, "jdoe")
}

func TestEntryXMLWithoutFields(t *testing.T) {
	e := NewEntry("eLogTesting", "hello")
	e.Preformatted = true

	out, err := e.XML()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<form")
	assert.NotContains(t, string(out), "tags=")
	assert.Contains(t, string(out), `<text preformatted="yes">hello</text>`)
}

func TestEntryValue(t *testing.T) {
	e := NewEntry("eLogTesting", "")
	_, ok := e.Value("Author")
	assert.False(t, ok)

	e.SetValue("Author", "jdoe")
	v, ok := e.Value("Author")
	assert.True(t, ok)
	assert.Equal(t, "jdoe", v)
}

func TestParseNames(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		elem string
		want []string
	}{
		{
			name: "tags",
			raw:  `<?xml version="1.0"?><tags><tag name="Test"/><tag name="Vacuum"></tag><tag/></tags>`,
			elem: "tag",
			want: []string{"Test", "Vacuum"},
		},
		{
			name: "nested categories",
			raw:  `<categories><category name="Sensor"><category name="Sensor/TS1 configuration"/></category></categories>`,
			elem: "category",
			want: []string{"Sensor", "Sensor/TS1 configuration"},
		},
		{
			name: "transcoded latin1 document",
			raw:  `<?xml version="1.0" encoding="ISO-8859-1"?><tags><tag name="Café"/></tags>`,
			elem: "tag",
			want: []string{"Café"},
		},
		{
			name: "empty",
			raw:  "",
			elem: "tag",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNames(tt.raw, tt.elem)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseNames() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseNamesMalformed(t *testing.T) {
	got, err := ParseNames(`<tags><tag name="Test"/><tag name=`, "tag")
	assert.Error(t, err)
	assert.Equal(t, []string{"Test"}, got)
}
