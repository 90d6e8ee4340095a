package markup

import (
	"strings"
	"unicode"
)

// CountWords counts the words of a Markdown body, ignoring markup and fenced code.
func CountWords(markdown string) int {
	return len(strings.FieldsFunc(CleanMarkdown(markdown), unicode.IsSpace))
}

// CleanMarkdown removes markdown syntax from text
func CleanMarkdown(markdown string) string {
	text := removeCodeBlocks(markdown)

	text = strings.NewReplacer(
		"`", "",
		"**", "",
		"*", "",
		"__", "",
		"_", "",
		"~~", "",
		"#", "",
	).Replace(text)

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "+ ")
		line = strings.TrimPrefix(line, ">")
		// numbered list markers ("1. ", "12. ")
		if i := strings.IndexFunc(line, func(r rune) bool { return !unicode.IsDigit(r) }); i > 0 && strings.HasPrefix(line[i:], ". ") {
			line = line[i+2:]
		}
		// horizontal rules
		if strings.Trim(line, "-") == "" {
			continue
		}
		cleaned = append(cleaned, line)
	}

	return strings.Join(cleaned, " ")
}

// removeCodeBlocks removes ```...``` code blocks from text
func removeCodeBlocks(text string) string {
	for {
		start := strings.Index(text, "```")
		if start == -1 {
			break
		}
		end := strings.Index(text[start+3:], "```")
		if end == -1 {
			break
		}
		text = text[:start] + text[start+end+6:]
	}
	return text
}
