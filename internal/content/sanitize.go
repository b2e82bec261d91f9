package content

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var (
	markdownQuoteRe = regexp.MustCompile(`(?m)^>[ \t]+(.+)$`)
	policy          = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "p", "a", "ul", "ol", "li",
		"strong", "b", "em", "code", "pre", "br", "del",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "ftp")
	p.RequireParseableURLs(true)
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-\w+$`)).OnElements("code", "pre")
	return p
}

// Sanitize strips every tag and attribute outside the forum allowlist.
// Markdown quote lines become <blockquote> first, and surviving anchors are
// forced to open in a new tab without an opener or referrer.
func Sanitize(raw string) string {
	if raw == "" {
		return ""
	}

	processed := markdownQuoteRe.ReplaceAllString(raw, "<blockquote>$1</blockquote>")
	clean := policy.Sanitize(processed)
	if !strings.Contains(clean, "<a") {
		return clean
	}
	return enforceLinkTargets(clean)
}

func enforceLinkTargets(htmlStr string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return htmlStr
	}

	doc.Find("a").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("target", "_blank")
		s.SetAttr("rel", "noopener noreferrer")
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return htmlStr
	}
	return out
}
