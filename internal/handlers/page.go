package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

type PageHandler struct {
	docRoot     string
	googleKey   string
	allowOrigin string
}

func NewPageHandler(docRoot, googleKey, allowOrigin string) *PageHandler {
	return &PageHandler{docRoot: docRoot, googleKey: googleKey, allowOrigin: allowOrigin}
}

// Index renders <doc_root>/index.html with the maps key. The template is
// parsed on every request so edits show up without a restart.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.docRoot, "index.html")
	tpl, err := template.ParseFiles(path)
	if errors.Is(err, fs.ErrNotExist) {
		notFound(w, r.URL.RequestURI())
		return
	}
	if err != nil {
		log.Error().Err(err).Str("template", path).Msg("Template parse failed")
		serverError(w, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, struct{ GoogleKey string }{h.googleKey}); err != nil {
		log.Error().Err(err).Str("template", path).Msg("Template render failed")
		serverError(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html")
	if h.allowOrigin != "" {
		w.Header().Set("Access-Control-Allow-Origin", h.allowOrigin)
	}
	w.Write(buf.Bytes())
}

func (h *PageHandler) GoogleKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"googlekey": h.googleKey})
}

// ByQuery dispatches on the value of the query parameter param. Requests
// without the parameter go to fallback; unknown values are not found.
func ByQuery(param string, routes map[string]http.HandlerFunc, fallback http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if !q.Has(param) {
			fallback(w, r)
			return
		}
		if h, ok := routes[q.Get(param)]; ok {
			h(w, r)
			return
		}
		notFound(w, r.URL.RequestURI())
	}
}
