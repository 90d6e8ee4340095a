package markup

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var htmlBlockTag = regexp.MustCompile(`(?i)<(p|h[1-6]|ul|ol|li|div|article|section|table|blockquote|strong|em|br)\b[^>]*>`)

// Converter moves article bodies between Markdown (storage format) and HTML
// (LLM output, WordPress post body). Output HTML is always sanitized.
type Converter struct {
	renderer  goldmark.Markdown
	toMD      *md.Converter
	sanitizer *HTMLSanitizer
}

// NewConverter creates a converter with GitHub-flavored Markdown rendering.
func NewConverter() *Converter {
	return &Converter{
		renderer:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		toMD:      md.NewConverter("", true, nil),
		sanitizer: NewHTMLSanitizer(),
	}
}

// MarkdownToHTML renders Markdown and sanitizes the result.
func (c *Converter) MarkdownToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := c.renderer.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return c.sanitizer.Sanitize(buf.String()), nil
}

// HTMLToMarkdown sanitizes HTML, then converts it to Markdown.
func (c *Converter) HTMLToMarkdown(html string) (string, error) {
	markdown, err := c.toMD.ConvertString(c.sanitizer.Sanitize(html))
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}

// Normalize turns raw model output into Markdown: a wrapping code fence is
// removed and HTML bodies are converted.
func (c *Converter) Normalize(text string) (string, error) {
	body, lang := stripFence(strings.TrimSpace(text))
	if lang == "html" || LooksLikeHTML(body) {
		return c.HTMLToMarkdown(body)
	}
	return body, nil
}

// LooksLikeHTML reports whether text contains block-level HTML markup.
func LooksLikeHTML(text string) bool {
	return htmlBlockTag.MatchString(text)
}

// stripFence unwraps "```lang\n...\n```" and returns the body and the fence language.
func stripFence(text string) (string, string) {
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text, ""
	}
	firstLine, rest, ok := strings.Cut(text, "\n")
	if !ok {
		return text, ""
	}
	lang := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(firstLine, "```")))
	return strings.TrimSpace(strings.TrimSuffix(rest, "```")), lang
}
