package content

import (
	"regexp"
	"strings"
)

type BlockType string

const (
	BlockText       BlockType = "text"
	BlockCode       BlockType = "code"
	BlockQuote      BlockType = "blockquote"
	BlockHeader     BlockType = "header"
	BlockList       BlockType = "list"
	defaultLanguage           = "plaintext"
)

// Block is one display unit of a message or reply body.
type Block struct {
	Type     BlockType `json:"type"`
	Content  string    `json:"content"`
	Language string    `json:"language,omitempty"`
	Level    int       `json:"level,omitempty"`
	Items    []string  `json:"items,omitempty"`

	// Filled by Renderer; never by Parse.
	HTML      string   `json:"html,omitempty"`
	ItemsHTML []string `json:"items_html,omitempty"`
}

var (
	fenceRe    = regexp.MustCompile("```(\\w*)[ \\t]*\\n([\\s\\S]*?)\\n?```(\\n)?")
	headerRe   = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	htmlQuotes = regexp.MustCompile(`^<blockquote>(.*)</blockquote>$`)
)

// Parse splits raw stored text into blocks in source order. It never fails:
// anything it cannot classify is text.
func Parse(raw string) []Block {
	var blocks []Block
	last := 0

	for _, m := range fenceRe.FindAllStringSubmatchIndex(raw, -1) {
		if m[0] > last {
			before := strings.TrimSuffix(raw[last:m[0]], "\n")
			blocks = appendTextBlocks(blocks, before)
		}

		lang := raw[m[2]:m[3]]
		if lang == "" {
			lang = defaultLanguage
		}
		blocks = append(blocks, Block{
			Type:     BlockCode,
			Content:  raw[m[4]:m[5]],
			Language: lang,
		})
		last = m[1]
	}

	if last < len(raw) {
		blocks = appendTextBlocks(blocks, raw[last:])
	}
	return blocks
}

func appendTextBlocks(blocks []Block, text string) []Block {
	if text == "" {
		return blocks
	}

	var cur *Block
	// Blank-only text blocks render as nothing and are dropped.
	flush := func() {
		if cur != nil && !(cur.Type == BlockText && strings.TrimSpace(cur.Content) == "") {
			blocks = append(blocks, *cur)
		}
		cur = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if item, ok := listItem(line); ok {
			if cur != nil && cur.Type != BlockList {
				flush()
			}
			if cur == nil {
				cur = &Block{Type: BlockList}
			}
			cur.Items = append(cur.Items, item)
			continue
		}

		if quote, ok := quoteLine(line); ok {
			if cur != nil && cur.Type != BlockQuote {
				flush()
			}
			if cur == nil {
				cur = &Block{Type: BlockQuote, Content: quote}
			} else {
				cur.Content += "\n" + quote
			}
			continue
		}

		if m := headerRe.FindStringSubmatch(line); m != nil {
			flush()
			blocks = append(blocks, Block{
				Type:    BlockHeader,
				Content: m[2],
				Level:   len(m[1]),
			})
			continue
		}

		if cur != nil && cur.Type != BlockText {
			flush()
		}
		if cur == nil {
			cur = &Block{Type: BlockText, Content: line}
		} else {
			cur.Content += "\n" + line
		}
	}
	flush()
	return blocks
}

func listItem(line string) (string, bool) {
	if strings.HasPrefix(line, "- ") && len(line) > 2 {
		return line[2:], true
	}
	return "", false
}

// quoteLine recognises markdown quotes as typed, the escaped form left behind
// by the sanitizer, and the <blockquote> lines it produces on write.
func quoteLine(line string) (string, bool) {
	switch {
	case strings.HasPrefix(line, "> "):
		return line[2:], true
	case strings.HasPrefix(line, "&gt; "):
		return line[len("&gt; "):], true
	}
	if m := htmlQuotes.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	return "", false
}
