// Package render turns model output (markdown) into presentation formats:
// sanitized HTML for the web API and plain styled text for the terminal.
package render

import (
	"bytes"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// allowedTags is the element allowlist applied after markdown rendering.
var allowedTags = []string{
	"p", "br", "strong", "em", "u", "ol", "ul", "li",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"blockquote", "code", "pre", "a", "div", "span",
}

// The converter and policy are built once; both are safe for concurrent use.
var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
	policy       *bluemonday.Policy
)

func setup() {
	markdownOnce.Do(func() {
		markdown = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				renderer.WithNodeRenderers(util.Prioritized(newCodeBlockRenderer(), 200)),
			),
		)

		policy = bluemonday.NewPolicy()
		policy.AllowElements(allowedTags...)
		policy.AllowAttrs("href", "title").OnElements("a")
		policy.AllowAttrs("class").OnElements("div", "span", "code", "pre")
		policy.AllowStandardURLs()
		policy.RequireNoFollowOnLinks(true)
	})
}

// HTML converts markdown to HTML restricted to a small tag allowlist.
// Fenced code blocks are highlighted with CSS classes. The error is
// non-nil only when conversion failed; callers fall back to the input.
func HTML(content string) (string, error) {
	setup()

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return content, err
	}
	return policy.Sanitize(buf.String()), nil
}

// codeBlockRenderer renders fenced code blocks through chroma, emitting
// class attributes rather than inline styles so sanitizing keeps them.
type codeBlockRenderer struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

func newCodeBlockRenderer() *codeBlockRenderer {
	return &codeBlockRenderer{
		formatter: chromahtml.New(chromahtml.WithClasses(true)),
		style:     styles.Get("github"),
	}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	block := node.(*ast.FencedCodeBlock)

	var code strings.Builder
	lines := block.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	lexer := lexers.Get(string(block.Language(source)))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code.String())
	if err != nil {
		return ast.WalkStop, err
	}

	_, _ = w.WriteString(`<div class="codehilite">`)
	if err := r.formatter.Format(w, r.style, iterator); err != nil {
		return ast.WalkStop, err
	}
	_, _ = w.WriteString("</div>\n")
	return ast.WalkSkipChildren, nil
}
