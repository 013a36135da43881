package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstImage(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple img tag",
			input: `<p>text</p><img src="http://example.com/pic.jpg">`,
			want:  "http://example.com/pic.jpg",
		},
		{
			name:  "self closing img",
			input: `<img src="http://example.com/a.png" alt="a"/>`,
			want:  "http://example.com/a.png",
		},
		{
			name:  "first of several",
			input: `<img src="http://example.com/1.jpg"><img src="http://example.com/2.jpg">`,
			want:  "http://example.com/1.jpg",
		},
		{
			name:  "src not first attribute",
			input: `<img alt="pic" width="100" src="http://example.com/b.gif">`,
			want:  "http://example.com/b.gif",
		},
		{
			name:  "uppercase tag",
			input: `<IMG SRC="http://example.com/c.jpg">`,
			want:  "http://example.com/c.jpg",
		},
		{
			name:  "no image",
			input: "<p>just text</p>",
			want:  "",
		},
		{
			name:  "img without src",
			input: `<img alt="broken">`,
			want:  "",
		},
		{
			name:  "empty src skipped",
			input: `<img src=""><img src="http://example.com/d.jpg">`,
			want:  "http://example.com/d.jpg",
		},
		{
			name:  "unclosed surrounding markup",
			input: `<div><p>broken <img src="http://example.com/e.jpg"`,
			want:  "",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstImage(tt.input))
		})
	}
}
