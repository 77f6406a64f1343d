package export

import (
	"regexp"
	"strings"
)

// HTMLToText reduces a trusted HTML fragment to plain text suitable for a
// spreadsheet cell: script/style blocks are dropped, list items become
// bulleted lines, block-closing tags become newlines, every remaining tag
// collapses to a space, and the standard entities are unescaped.
// Unescaping runs after tag stripping, so entity-encoded markup comes out
// as literal text (e.g. "&lt;b&gt;" becomes "<b>") rather than being
// stripped; a second pass would remove it.

var (
	scriptRe     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	listItemRe   = regexp.MustCompile(`(?i)<li\b[^>]*>`)
	blockCloseRe = regexp.MustCompile(`(?i)</(p|div|h[1-6]|blockquote|pre|ul|ol)>`)
	lineBreakRe  = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	anyTagRe     = regexp.MustCompile(`<[^>]+>`)
	blankRunRe   = regexp.MustCompile(`\n\s*\n`)
)

// entity replacements are applied in order; &amp; before the bracket
// entities so double-escaped input fully unescapes in one pass
var entities = [][2]string{
	{"&nbsp;", " "},
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
}

func HTMLToText(html string) string {
	if html == "" {
		return ""
	}

	text := scriptRe.ReplaceAllString(html, "")
	text = styleRe.ReplaceAllString(text, "")
	text = listItemRe.ReplaceAllString(text, "\n  • ")
	text = blockCloseRe.ReplaceAllString(text, "\n")
	text = lineBreakRe.ReplaceAllString(text, "\n")
	text = anyTagRe.ReplaceAllString(text, " ")

	for _, e := range entities {
		text = strings.ReplaceAll(text, e[0], e[1])
	}

	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	text = strings.Join(lines, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
