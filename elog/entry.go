package elog

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// DefaultFormName is the form entries posted from Slack are filed under.
const DefaultFormName = "Slack entry"

// Field is a named form value attached to an entry.
type Field struct {
	Name  string
	Value string
}

// Entry is a logbook entry to be posted.
type Entry struct {
	Category     string
	Tags         []string
	FormName     string
	Text         string
	Preformatted bool
	Fields       []Field
}

// NewEntry returns an entry in category using the default form.
func NewEntry(category, text string) *Entry {
	return &Entry{
		Category: category,
		FormName: DefaultFormName,
		Text:     text,
	}
}

// SetValue sets the named form field, replacing an existing value.
func (e *Entry) SetValue(name, value string) {
	for i := range e.Fields {
		if e.Fields[i].Name == name {
			e.Fields[i].Value = value
			return
		}
	}
	e.Fields = append(e.Fields, Field{Name: name, Value: value})
}

// Value returns the named form field.
func (e *Entry) Value(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

type xmlField struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type xmlForm struct {
	Name   string     `xml:"name,attr"`
	Fields []xmlField `xml:"field"`
}

type xmlText struct {
	Preformatted string `xml:"preformatted,attr,omitempty"`
	Body         string `xml:",chardata"`
}

type xmlEntry struct {
	XMLName   xml.Name `xml:"entry"`
	ID        string   `xml:"id,attr,omitempty"`
	Author    string   `xml:"author,attr,omitempty"`
	Timestamp string   `xml:"timestamp,attr,omitempty"`
	Category  string   `xml:"category,attr"`
	FormName  string   `xml:"formname,attr,omitempty"`
	Tags      string   `xml:"tags,attr,omitempty"`
	Form      *xmlForm `xml:"form,omitempty"`
	Text      xmlText  `xml:"text"`
}

// XML encodes the entry for the xml_post endpoint.
func (e *Entry) XML() ([]byte, error) {
	x := xmlEntry{
		Category: e.Category,
		FormName: e.FormName,
		Tags:     strings.Join(e.Tags, ","),
		Text:     xmlText{Preformatted: "no", Body: e.Text},
	}
	if e.Preformatted {
		x.Text.Preformatted = "yes"
	}
	if len(e.Fields) > 0 {
		x.Form = &xmlForm{Name: e.FormName}
		for _, f := range e.Fields {
			x.Form.Fields = append(x.Form.Fields, xmlField{Name: f.Name, Value: f.Value})
		}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(x); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// newDecoder reads documents returned by Client, which are already UTF-8
// whatever encoding their declaration names.
func newDecoder(raw string) *xml.Decoder {
	d := xml.NewDecoder(strings.NewReader(raw))
	d.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) {
		return r, nil
	}
	return d
}

// ParseNames returns the name attribute of every element called elem in
// document order. It is used for <tag name=".."/> and <category name=".."/>
// listings.
func ParseNames(raw, elem string) ([]string, error) {
	var names []string
	d := newDecoder(raw)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return names, nil
		}
		if err != nil {
			return names, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != elem {
			continue
		}
		for _, a := range se.Attr {
			if a.Name.Local == "name" && a.Value != "" {
				names = append(names, a.Value)
			}
		}
	}
}
