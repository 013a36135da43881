package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips tags",
			input: "<p>Hello <b>world</b></p>",
			want:  "Hello world",
		},
		{
			name:  "decodes entities",
			input: "Fish &amp; Chips &lt;fresh&gt;",
			want:  "Fish & Chips <fresh>",
		},
		{
			name:  "collapses whitespace",
			input: "<p>line one</p>\n\n<p>line\t\ttwo</p>",
			want:  "line one line two",
		},
		{
			name:  "drops script content",
			input: `before<script>alert("x")</script>after`,
			want:  "beforeafter",
		},
		{
			name:  "plain text unchanged",
			input: "just words here",
			want:  "just words here",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "nested markup with attributes",
			input: `<div class="body"><a href="http://example.com">link text</a> and <span>more</span></div>`,
			want:  "link text and more",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.input))
		})
	}
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, `Tom & Jerry "quoted"`, Unescape("Tom &amp; Jerry &quot;quoted&quot;"))
	assert.Equal(t, "no entities", Unescape("no entities"))
	assert.Equal(t, "", Unescape(""))
}
