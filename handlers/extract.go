package handlers

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// span is the byte range of a whitespace separated token.
type span struct {
	start, end int
}

// fieldSpans returns the positions of the tokens strings.Fields would produce.
func fieldSpans(s string) []span {
	var spans []span
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				spans = append(spans, span{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, span{start, len(s)})
	}
	return spans
}

// ExtractParam finds keyword as a whole token in text (ignoring case) and
// returns the token following it as param, and text with the first
// "keyword param" occurrence removed and trimmed.
//
// param is resolved against aliases, whose keys must be lower case; unknown
// values are returned verbatim. ok is false, and text is returned unchanged,
// when keyword is missing or has nothing after it.
func ExtractParam(text, keyword string, aliases map[string]string) (param, rest string, ok bool) {
	spans := fieldSpans(text)
	for i := 0; i < len(spans)-1; i++ {
		tok := text[spans[i].start:spans[i].end]
		if !strings.EqualFold(tok, keyword) {
			continue
		}

		p := spans[i+1]
		param = text[p.start:p.end]
		rest = strings.TrimSpace(text[:spans[i].start] + text[p.end:])
		return Resolve(param, aliases), rest, true
	}
	return "", text, false
}

// Resolve maps a shorthand to its canonical name, ignoring case.
func Resolve(name string, aliases map[string]string) string {
	if canonical, ok := aliases[strings.ToLower(name)]; ok {
		return canonical
	}
	return name
}

// ExtractTags returns the tags from valid referenced in text, either as
// trigger-prefixed tokens ("#vacuum") or as Slack channel links
// ("<#C024BE7LR|vacuum>"). Matching ignores case, results use the casing of
// valid and are reported once, in the order they are first referenced.
func ExtractTags(text string, trigger rune, valid []string) []string {
	var (
		tags []string
		seen = make(map[string]bool)
	)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		name, ok := tagName(tok, trigger)
		if !ok {
			continue
		}
		if tag, ok := match(name, valid); ok && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

// match returns the first entry of valid equal to name ignoring case.
func match(name string, valid []string) (string, bool) {
	for _, v := range valid {
		if v != "" && strings.EqualFold(v, name) {
			return v, true
		}
	}
	return "", false
}

func tagName(tok string, trigger rune) (string, bool) {
	first, size := utf8.DecodeRuneInString(tok)
	switch {
	case first == trigger && len(tok) > size:
		return tok[size:], true
	case first == '<' && strings.HasSuffix(tok, ">"):
		inner := tok[1 : len(tok)-1]
		if r, _ := utf8.DecodeRuneInString(inner); r != trigger {
			return "", false
		}
		i := strings.IndexByte(inner, '|')
		if i < 0 || i == len(inner)-1 {
			return "", false
		}
		return inner[i+1:], true
	}
	return "", false
}
