package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/timecapsule/internal/errors"
)

// ViewPageData is the template data for the capsule view page.
type ViewPageData struct {
	Title    string
	Version  string
	ID       string
	OpenDate string
	Due      bool
	Body     template.HTML
	Notice   string
	Error    string
}

// Renderer renders the HTML view page.
type Renderer struct {
	view    *template.Template
	version string
}

// NewRenderer parses the view template from the given FS.
func NewRenderer(templateFS fs.FS, version string) *Renderer {
	return &Renderer{
		view:    template.Must(template.New("view.html").ParseFS(templateFS, "view.html")),
		version: version,
	}
}

// renderView renders the view page with the given HTTP status code.
func (r *Renderer) renderView(w http.ResponseWriter, logger *slog.Logger, status int, data ViewPageData) {
	data.Version = r.version
	if data.Title == "" {
		data.Title = "TimeCapsule"
	}

	var buf bytes.Buffer
	if err := r.view.Execute(&buf, data); err != nil {
		logger.Error("template execution error", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// detailBody is the error payload: {"detail": "..."}.
type detailBody struct {
	Detail string `json:"detail"`
}

// writeDetail writes an error payload with the given status.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	renderJSON(w, status, detailBody{Detail: detail})
}

// errorResponse maps an operation error to a status and detail message.
// notFound is the detail used for NOT_FOUND, which differs per route.
// Server-side failures are reported generically; the cause is only logged.
func errorResponse(logger *slog.Logger, err error, notFound string) (int, string) {
	ce := errors.As(err)
	switch ce.Code {
	case errors.ErrNotFound:
		return http.StatusNotFound, notFound
	case errors.ErrInvalidRequest:
		return http.StatusUnprocessableEntity, ce.Message
	case errors.ErrMessageTooLarge:
		return http.StatusRequestEntityTooLarge, ce.Message
	}

	logger.Error("request failed",
		slog.String("code", string(ce.Code)),
		slog.Any("error", err),
	)
	return http.StatusInternalServerError, "Internal Server Error"
}

// renderError writes the JSON error payload for err.
func renderError(w http.ResponseWriter, logger *slog.Logger, err error, notFound string) {
	status, detail := errorResponse(logger, err, notFound)
	writeDetail(w, status, detail)
}

// renderMarkdown converts markdown text to HTML using goldmark.
// goldmark omits raw HTML by default, so capsule text cannot inject markup.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}
