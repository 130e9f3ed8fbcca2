package html

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Segment is a run of snippet text. Marked runs matched the search text.
type Segment struct {
	Text   string
	Marked bool
}

// Elements whose content is never shown.
var hiddenElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"svg":      true,
	"head":     true,
}

// Elements that separate words when the markup is flattened.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "hr": true, "li": true, "tr": true, "td": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "table": true, "section": true, "article": true,
}

// Snippet splits fragment into plain and marked segments.
// Unbalanced mark tags are tolerated: a stray close is ignored and an
// unclosed open marks the rest of the fragment.
func Snippet(fragment string) []Segment {
	var (
		raw    []Segment
		marked int
		hidden int
	)

	appendText := func(text string) {
		if text == "" {
			return
		}
		m := marked > 0
		if n := len(raw); n > 0 && raw[n-1].Marked == m {
			raw[n-1].Text += text
			return
		}
		raw = append(raw, Segment{Text: text, Marked: m})
	}

	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF or a malformed tail; either way the fragment is done.
			break
		}

		switch tt {
		case html.TextToken:
			if hidden == 0 {
				appendText(string(z.Text()))
			}

		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			opening := tt == html.StartTagToken

			switch {
			case tag == "mark" && tt != html.SelfClosingTagToken:
				if opening {
					marked++
				} else if marked > 0 {
					marked--
				}
			case hiddenElements[tag] && tt != html.SelfClosingTagToken:
				if opening {
					hidden++
				} else if hidden > 0 {
					hidden--
				}
			case blockElements[tag] && hidden == 0:
				appendText(" ")
			}
		}
	}

	return collapse(raw)
}

// collapse squeezes whitespace runs to one space across segment boundaries
// and trims the ends. Segments left empty are dropped.
func collapse(raw []Segment) []Segment {
	out := make([]Segment, 0, len(raw))
	lastSpace := true // trims leading space

	for _, seg := range raw {
		var b strings.Builder
		for _, r := range seg.Text {
			if unicode.IsSpace(r) {
				if !lastSpace {
					b.WriteByte(' ')
					lastSpace = true
				}
				continue
			}
			b.WriteRune(r)
			lastSpace = false
		}
		if b.Len() == 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Marked == seg.Marked {
			out[n-1].Text += b.String()
			continue
		}
		out = append(out, Segment{Text: b.String(), Marked: seg.Marked})
	}

	if n := len(out); n > 0 {
		out[n-1].Text = strings.TrimRight(out[n-1].Text, " ")
		if out[n-1].Text == "" {
			out = out[:n-1]
		}
	}
	return out
}

// Text returns fragment as plain text with all markup removed.
func Text(fragment string) string {
	var b strings.Builder
	for _, seg := range Snippet(fragment) {
		b.WriteString(seg.Text)
	}
	return b.String()
}
