package content

import (
	"fmt"
	"regexp"
	"strings"
)

const placeholderMark = "\x1a"

var (
	inlineCodeRe  = regexp.MustCompile("`([^`]+)`")
	anchorRe      = regexp.MustCompile(`(?is)<a\s[^>]*>.*?</a>`)
	boldItalicRe  = regexp.MustCompile(`\*\*\*(.+?)\*\*\*`)
	boldStarRe    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnderRe   = regexp.MustCompile(`__(.+?)__`)
	italicStarRe  = regexp.MustCompile(`\*(.+?)\*`)
	italicUnderRe = regexp.MustCompile(`_(.+?)_`)
	strikeRe      = regexp.MustCompile(`~~(.+?)~~`)

	// The leading group keeps URLs inside attribute values from being linked.
	urlRe = regexp.MustCompile(`(?i)(^|[^"'=\w/])((?:https?|ftp)://(?:www\.)?[-a-z0-9@:%._+~#=]{1,256}\.[a-z0-9()]{1,6}\b[-a-z0-9()@:%_+.~#?&/=]*)`)
)

// FormatInline turns inline markdown into HTML. Inline code spans and
// existing anchors are set aside first so nothing inside them is
// interpreted. The result still has to go through Sanitize before it
// reaches a client.
func FormatInline(text string) string {
	var snippets, anchors []string
	out := inlineCodeRe.ReplaceAllStringFunc(text, func(m string) string {
		snippets = append(snippets, m[1:len(m)-1])
		return placeholder("CODE", len(snippets)-1)
	})
	out = anchorRe.ReplaceAllStringFunc(out, func(m string) string {
		anchors = append(anchors, m)
		return placeholder("LINK", len(anchors)-1)
	})

	out = boldItalicRe.ReplaceAllString(out, "<strong><em>$1</em></strong>")
	out = boldStarRe.ReplaceAllString(out, "<strong>$1</strong>")
	out = boldUnderRe.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicStarRe.ReplaceAllString(out, "<em>$1</em>")
	out = italicUnderRe.ReplaceAllString(out, "<em>$1</em>")
	out = strikeRe.ReplaceAllString(out, "<del>$1</del>")
	out = urlRe.ReplaceAllString(out, `$1<a href="$2" target="_blank" rel="noopener noreferrer">$2</a>`)

	for i, a := range anchors {
		out = strings.Replace(out, placeholder("LINK", i), a, 1)
	}
	for i, code := range snippets {
		out = strings.Replace(out, placeholder("CODE", i), "<code>"+code+"</code>", 1)
	}
	return out
}

func placeholder(kind string, i int) string {
	return fmt.Sprintf("%s%s%d%s", placeholderMark, kind, i, placeholderMark)
}
