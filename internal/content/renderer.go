package content

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Renderer memoizes rendered output keyed by the stored text. Rendering is
// deterministic, so entries never go stale; eviction only bounds memory.
type Renderer struct {
	blocks *lru.Cache[string, []Block]
	html   *lru.Cache[string, string]
}

func NewRenderer(size int) (*Renderer, error) {
	if size <= 0 {
		size = 500
	}
	blocks, err := lru.New[string, []Block](size)
	if err != nil {
		return nil, err
	}
	htmlCache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Renderer{blocks: blocks, html: htmlCache}, nil
}

// Blocks parses raw and attaches sanitized inline HTML to every non-code
// block. Callers must not mutate the returned slice.
func (r *Renderer) Blocks(raw string) []Block {
	if cached, ok := r.blocks.Get(raw); ok {
		return cached
	}

	blocks := Parse(raw)
	for i := range blocks {
		b := &blocks[i]
		switch b.Type {
		case BlockCode:
		case BlockList:
			b.ItemsHTML = make([]string, len(b.Items))
			for j, item := range b.Items {
				b.ItemsHTML[j] = Sanitize(FormatInline(item))
			}
		default:
			b.HTML = Sanitize(FormatInline(b.Content))
		}
	}

	r.blocks.Add(raw, blocks)
	return blocks
}

// Markdown renders a channel description.
func (r *Renderer) Markdown(source string) string {
	if cached, ok := r.html.Get(source); ok {
		return cached
	}
	out := RenderMarkdown(source)
	r.html.Add(source, out)
	return out
}
