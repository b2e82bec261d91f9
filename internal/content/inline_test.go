package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatInline(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"code span is literal", "before `*code*` after", "before <code>*code*</code> after"},
		{"bold italic", "***both***", "<strong><em>both</em></strong>"},
		{"bold stars", "**b**", "<strong>b</strong>"},
		{"bold underscores", "__b__", "<strong>b</strong>"},
		{"italic stars", "*i*", "<em>i</em>"},
		{"italic underscores", "_i_", "<em>i</em>"},
		{"strike", "~~gone~~", "<del>gone</del>"},
		{
			"bare url",
			"see https://example.com/a?b=1 now",
			`see <a href="https://example.com/a?b=1" target="_blank" rel="noopener noreferrer">https://example.com/a?b=1</a> now`,
		},
		{
			"existing anchor is left alone",
			`<a href="https://example.com">https://example.com</a>`,
			`<a href="https://example.com">https://example.com</a>`,
		},
		{
			"url inside bold",
			"**https://example.com**",
			`<strong><a href="https://example.com" target="_blank" rel="noopener noreferrer">https://example.com</a></strong>`,
		},
		{
			"url inside strike",
			"~~ftp://files.example.org/x~~",
			`<del><a href="ftp://files.example.org/x" target="_blank" rel="noopener noreferrer">ftp://files.example.org/x</a></del>`,
		},
		{
			"url inside italic",
			"*https://example.com*",
			`<em><a href="https://example.com" target="_blank" rel="noopener noreferrer">https://example.com</a></em>`,
		},
		{
			"existing anchor inside bold",
			`**<a href="https://example.com">site</a>**`,
			`<strong><a href="https://example.com">site</a></strong>`,
		},
		{"no markup", "plain words", "plain words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatInline(tt.in))
		})
	}
}

func TestFormatInlineMultipleCodeSpans(t *testing.T) {
	out := FormatInline("`a_b_c` and `**x**`")
	assert.Equal(t, "<code>a_b_c</code> and <code>**x**</code>", out)
}
