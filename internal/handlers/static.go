package handlers

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

var mimeTypes = map[string]string{
	".htm":  "text/html",
	".html": "text/html",
	".php":  "text/html",
	".css":  "text/css",
	".txt":  "text/plain",
	".js":   "application/javascript",
	".json": "application/json",
	".xml":  "application/xml",
	".swf":  "application/x-shockwave-flash",
	".flv":  "video/x-flv",
	".png":  "image/png",
	".jpe":  "image/jpeg",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".ico":  "image/vnd.microsoft.icon",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".svg":  "image/svg+xml",
	".svgz": "image/svg+xml",
}

// MimeType picks a content type from the file extension.
func MimeType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if t, ok := mimeTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/text"
}

// StaticHandler serves files below docRoot. Request targets containing ".."
// never reach it (see middleware.RequestGuard).
type StaticHandler struct {
	docRoot string
}

func NewStaticHandler(docRoot string) *StaticHandler {
	return &StaticHandler{docRoot: docRoot}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Path
	if strings.HasSuffix(rel, "/") {
		rel += "index.html"
	}
	name := filepath.Join(h.docRoot, filepath.FromSlash(path.Clean("/"+rel)))

	f, err := os.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			notFound(w, r.URL.RequestURI())
			return
		}
		log.Error().Err(err).Str("file", name).Msg("Failed to open static file")
		serverError(w, err.Error())
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		serverError(w, err.Error())
		return
	}
	if info.IsDir() {
		notFound(w, r.URL.RequestURI())
		return
	}

	w.Header().Set("Content-Type", MimeType(name))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
