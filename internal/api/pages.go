package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/MikeSquared-Agency/Playground/internal/params"
	"github.com/MikeSquared-Agency/Playground/internal/rankings"
	"github.com/MikeSquared-Agency/Playground/internal/web"
)

// PagesHandler serves the server-rendered playground page.
type PagesHandler struct {
	runner   *Runner
	renderer *web.Renderer
	logger   *slog.Logger
}

func NewPagesHandler(rn *Runner, renderer *web.Renderer, logger *slog.Logger) *PagesHandler {
	return &PagesHandler{runner: rn, renderer: renderer, logger: logger}
}

func (h *PagesHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, web.NewPage(params.Default()))
}

// Submit handles both selector transitions and runs, told apart by the op
// field.
func (h *PagesHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, withAlert(params.Default(), "Invalid input: could not read the form"))
		return
	}

	op := params.ParseOp(r.PostForm.Get(params.FieldOp))
	p, err := params.FromForm(r.PostForm)
	if err != nil {
		if op == params.OpRun {
			h.runner.Reject(r.Context(), SourcePage, p, err)
		}
		h.render(w, http.StatusOK, withAlert(p, err.Error()))
		return
	}

	if op != params.OpRun {
		p.ApplyChange(op)
		h.render(w, http.StatusOK, web.NewPage(p))
		return
	}

	page := web.NewPage(p)
	_, resp, err := h.runner.Run(r.Context(), SourcePage, p)
	if err != nil {
		var ve *params.ValidationError
		if errors.As(err, &ve) {
			page.Alert = ve.Message
			h.render(w, http.StatusOK, page)
			return
		}
		page.Error = backendMessage(err)
		h.render(w, http.StatusBadGateway, page)
		return
	}

	if err := page.SetResults(resp); err != nil {
		h.logger.Error("failed to render charts", "error", err)
		page.Error = "The rankings were computed but the charts could not be drawn."
	}
	h.render(w, http.StatusOK, page)
}

func (h *PagesHandler) render(w http.ResponseWriter, status int, page *web.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.renderer.Render(w, page); err != nil {
		h.logger.Error("failed to render page", "error", err)
	}
}

func withAlert(p params.Params, msg string) *web.Page {
	page := web.NewPage(p)
	page.Alert = msg
	return page
}

func backendMessage(err error) string {
	var be *rankings.BackendError
	if errors.As(err, &be) && be.Detail != "" {
		return "The ranking backend rejected the request: " + be.Detail
	}
	return "The ranking backend could not be reached. Please try again."
}
