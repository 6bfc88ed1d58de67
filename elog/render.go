package elog

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Markup the logbook's rich text editor produces. Text that merely contains
// a '<', such as "<@U123>" or "p < 3 torr", is left alone.
var editorTags = map[atom.Atom]bool{
	atom.P: true, atom.Br: true, atom.Div: true, atom.Span: true,
	atom.B: true, atom.I: true, atom.U: true, atom.Strong: true, atom.Em: true,
	atom.A: true, atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Pre: true,
	atom.Table: true, atom.Tr: true, atom.Td: true, atom.Blockquote: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
}

func editorMarkup(s string) bool {
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if editorTags[atom.Lookup(name)] {
				return true
			}
		}
	}
}

func htmlToMarkdown(s string) string {
	if !editorMarkup(s) {
		return s
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(md)
}

// Render formats an entry document returned by Get as a Slack message.
//
// ok is false when raw does not hold an entry, callers should relay raw as is.
func Render(raw string) (msg string, ok bool) {
	var x xmlEntry
	if err := newDecoder(raw).Decode(&x); err != nil {
		return "", false
	}
	if x.Category == "" && strings.TrimSpace(x.Text.Body) == "" {
		return "", false
	}

	var b strings.Builder
	if x.ID != "" {
		fmt.Fprintf(&b, "*Entry %s*", x.ID)
	} else {
		b.WriteString("*Entry*")
	}
	if x.Category != "" {
		fmt.Fprintf(&b, " in _%s_", x.Category)
	}
	b.WriteString("\n")

	author := x.Author
	if x.Form != nil {
		for _, f := range x.Form.Fields {
			if f.Name == "Author" && author == "" {
				author = f.Value
				continue
			}
			if f.Name == "Author" {
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", f.Name, strings.TrimSpace(f.Value))
		}
	}
	if author != "" {
		fmt.Fprintf(&b, "Author: %s\n", author)
	}
	if x.Timestamp != "" {
		fmt.Fprintf(&b, "Posted: %s\n", x.Timestamp)
	}
	if x.Tags != "" {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Replace(x.Tags, ",", ", ", -1))
	}

	text := strings.TrimSpace(x.Text.Body)
	if x.Text.Preformatted == "yes" {
		text = "```\n" + text + "\n```"
	} else {
		text = htmlToMarkdown(text)
	}
	if text != "" {
		b.WriteString("\n")
		b.WriteString(text)
	}

	return strings.TrimSpace(b.String()), true
}
