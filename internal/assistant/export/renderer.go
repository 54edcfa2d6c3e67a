package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/office"
	"github.com/unidoc/unioffice/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Format names an export format.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
)

// Renderer writes a transcript in one output format.
type Renderer interface {
	Format() Format
	ContentType() string
	Render(w io.Writer, t *Transcript) error
}

// Registry looks renderers up by format.
type Registry struct {
	renderers map[Format]Renderer
}

// NewRegistry registers the DOCX and HTML renderers.
func NewRegistry(licenseKey string) *Registry {
	r := &Registry{renderers: make(map[Format]Renderer)}
	for _, rd := range []Renderer{NewDOCXRenderer(licenseKey), NewHTMLRenderer()} {
		r.renderers[rd.Format()] = rd
	}
	return r
}

// Get returns the renderer for format; an empty format means DOCX.
func (r *Registry) Get(format string) (Renderer, bool) {
	if format == "" {
		format = string(FormatDOCX)
	}
	rd, ok := r.renderers[Format(strings.ToLower(format))]
	return rd, ok
}

// DOCXRenderer renders Word documents with unioffice.
type DOCXRenderer struct {
	licenseKey string
}

func NewDOCXRenderer(licenseKey string) *DOCXRenderer {
	return &DOCXRenderer{licenseKey: licenseKey}
}

func (r *DOCXRenderer) Format() Format { return FormatDOCX }

func (r *DOCXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

func (r *DOCXRenderer) Render(w io.Writer, t *Transcript) error {
	if err := office.SetLicense(r.licenseKey); err != nil {
		return err
	}

	doc := document.New()
	defer doc.Close()

	for _, l := range t.Lines {
		para := doc.AddParagraph()
		switch l.Kind {
		case LineHeading:
			para.SetStyle("Heading1")
			para.AddRun().AddText(l.Text)
		case LineTurn:
			label := para.AddRun()
			label.Properties().SetBold(true)
			label.AddText(l.Label)
			para.AddRun().AddText(l.Text)
		case LineCitationHeader:
			para.SetStyle("IntenseQuote")
			para.AddRun().AddText(l.Text)
		case LineCitation:
			para.SetStyle("ListParagraph")
			para.AddRun().AddText(l.Text)
		default:
			para.AddRun().AddText(l.Text)
		}
	}

	if err := doc.Save(w); err != nil {
		return fmt.Errorf("failed to write docx: %w", err)
	}
	return nil
}

// HTMLRenderer renders a standalone HTML page; assistant replies are treated as markdown.
type HTMLRenderer struct {
	md   goldmark.Markdown
	page *template.Template
}

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		md:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
		page: template.Must(template.New("transcript").Parse(pageTemplate)),
	}
}

func (r *HTMLRenderer) Format() Format { return FormatHTML }

func (r *HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

type htmlLine struct {
	Class string
	Label string
	Body  template.HTML
	Text  string
}

func (r *HTMLRenderer) Render(w io.Writer, t *Transcript) error {
	data := struct {
		Title string
		Lines []htmlLine
	}{Title: t.Title}

	for _, l := range t.Lines {
		hl := htmlLine{Label: l.Label, Text: l.Text}
		switch l.Kind {
		case LineHeading:
			hl.Class = "heading"
		case LineTurn:
			hl.Class = "turn"
			if l.Markdown {
				var buf bytes.Buffer
				if err := r.md.Convert([]byte(l.Text), &buf); err != nil {
					return fmt.Errorf("failed to render markdown: %w", err)
				}
				hl.Body = template.HTML(buf.String())
			}
		case LineCitationHeader:
			hl.Class = "citation-header"
		case LineCitation:
			hl.Class = "citation"
		default:
			hl.Class = "citation-footer"
		}
		data.Lines = append(data.Lines, hl)
	}

	return r.page.Execute(w, data)
}

const pageTemplate = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<title>对话历史 - {{.Title}}</title>
</head>
<body>
{{range .Lines}}{{if eq .Class "heading"}}<h1>{{.Text}}</h1>
{{else if eq .Class "turn"}}<div class="turn"><strong>{{.Label}}</strong>{{if .Body}}{{.Body}}{{else}}<p>{{.Text}}</p>{{end}}</div>
{{else if eq .Class "citation-header"}}<blockquote>{{.Text}}</blockquote>
{{else if eq .Class "citation"}}<p class="citation">{{.Text}}</p>
{{else}}<hr>
{{end}}{{end}}</body>
</html>
`
