package export_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sheetsage/sheetsage/pkg/export"
)

func TestHTMLToText(t *testing.T) {
	html := `<p>First, select <strong>cell C1</strong>.</p>` +
		`<ul><li>Type the formula</li><li>Press &quot;Enter&quot;</li></ul>` +
		`<p>Done &amp; dusted.</p>`

	text := export.HTMLToText(html)

	gt.S(t, text).Contains("First, select cell C1.")
	gt.S(t, text).Contains("• Type the formula")
	gt.S(t, text).Contains(`Press "Enter"`)
	gt.S(t, text).Contains("Done & dusted.")
	gt.S(t, text).NotContains("<")
	gt.S(t, text).NotContains(">")
}

func TestHTMLToTextStripsScriptAndStyle(t *testing.T) {
	html := `<p>visible</p><script type="text/javascript">alert("x")</script>` +
		`<style>p { color: red }</style><p>also visible</p>`

	text := export.HTMLToText(html)
	gt.S(t, text).Contains("visible")
	gt.S(t, text).Contains("also visible")
	gt.S(t, text).NotContains("alert")
	gt.S(t, text).NotContains("color")
}

func TestHTMLToTextLineBreaks(t *testing.T) {
	html := `<p>one</p><p>two<br/>three</p><hr>four`

	text := export.HTMLToText(html)
	gt.A(t, strings.Split(text, "\n")).Length(4)
}

func TestHTMLToTextEntities(t *testing.T) {
	text := export.HTMLToText("a&nbsp;b &amp; c &#39;d&#39;")
	gt.Equal(t, text, `a b & c 'd'`)
}

func TestHTMLToTextEntityEncodedMarkup(t *testing.T) {
	// Tags are stripped before entities are unescaped, so entity-encoded
	// markup survives the first pass as literal text and is only stripped
	// by a second pass. Model output showing a tag name to the user (e.g.
	// "use a &lt;b&gt; tag") relies on this ordering.
	once := export.HTMLToText(`<p>use a &lt;b&gt; tag</p>`)
	gt.Equal(t, once, "use a <b> tag")

	twice := export.HTMLToText(once)
	gt.Equal(t, twice, "use a   tag")
}

func TestHTMLToTextIdempotent(t *testing.T) {
	inputs := []string{
		`<p>Use <code>SUMIF</code> like this:</p><ul><li>Select C1</li><li>Enter the formula</li></ul>`,
		`<p>Plain paragraph.</p>`,
		"already plain text\nwith lines",
		"",
		`<div><h2>Heading</h2><blockquote>quoted</blockquote></div>`,
	}

	for _, html := range inputs {
		once := export.HTMLToText(html)
		twice := export.HTMLToText(once)
		gt.Equal(t, twice, once)
	}
}

func TestHTMLToTextEmpty(t *testing.T) {
	gt.Equal(t, export.HTMLToText(""), "")
	gt.Equal(t, export.HTMLToText("<p> </p><ul></ul>"), "")
}
