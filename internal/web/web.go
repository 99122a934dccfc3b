// Package web holds the embedded page templates and static assets, and the
// view model the page is rendered from.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/MikeSquared-Agency/Playground/internal/params"
	"github.com/MikeSquared-Agency/Playground/internal/plot"
	"github.com/MikeSquared-Agency/Playground/internal/rankings"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

const pageTemplate = "page"

// Static serves the embedded assets. Mount it under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return http.FileServer(http.FS(staticFS))
	}
	return http.FileServer(http.FS(sub))
}

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"num": params.FormatNumber,
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the full page. The page is buffered so a template error
// never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, page *Page) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, pageTemplate, page); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Page is everything the playground page shows for one request.
type Page struct {
	Params         params.Params
	AdjacencyModes []params.AdjacencyMode
	BModes         []params.BMode

	// Alert blocks the run with a validation message.
	Alert string
	// Error reports a backend failure.
	Error string

	Standings []rankings.Standing
	Charts    []Chart
}

// Chart is a rendered correlation plot plus its per-team details.
type Chart struct {
	Plot   plot.Plot
	SVG    template.HTML
	Points []plot.Point
}

func NewPage(p params.Params) *Page {
	return &Page{
		Params:         p,
		AdjacencyModes: params.AdjacencyModes,
		BModes:         params.BModes,
	}
}

func (p *Page) HasResults() bool { return len(p.Standings) > 0 }

func (p *Page) ShowWinLoss() bool { return p.Params.AdjacencyMode == params.AdjacencyWinLoss }
func (p *Page) ShowMargin() bool  { return p.Params.AdjacencyMode == params.AdjacencyMargin }
func (p *Page) ShowTiers() bool   { return p.Params.AdjacencyMode == params.AdjacencyMarginTiers }
func (p *Page) ShowWinsPower() bool {
	return p.Params.BMode == params.BScaledByWins
}

// SetResults fills the ranking list and renders the correlation charts.
func (p *Page) SetResults(resp *rankings.PowerRankingsResponse) error {
	p.Standings = resp.Standings()
	p.Charts = p.Charts[:0]
	for _, pl := range plot.Correlations(resp) {
		var buf bytes.Buffer
		if err := pl.RenderSVG(&buf); err != nil {
			return err
		}
		p.Charts = append(p.Charts, Chart{
			Plot:   pl,
			SVG:    template.HTML(buf.String()),
			Points: pl.Points(),
		})
	}
	return nil
}
