package middleware

import (
	"net/http"
	"os"
	"path/filepath"
)

const fallbackSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 200"><rect width="200" height="200" fill="#f0f0f0"/><circle cx="100" cy="90" r="45" fill="#fff" stroke="#c0392b" stroke-width="6"/><text x="100" y="100" text-anchor="middle" font-family="Arial" font-size="28" fill="#c0392b">7</text><text x="100" y="170" text-anchor="middle" font-family="Arial" font-size="14" fill="#666">LOTTERY</text></svg>`

// StaticFileServer serves the game logo images referenced by win emails,
// falling back to an inline SVG when a logo is missing.
func StaticFileServer(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean(r.URL.Path))

		if _, err := os.Stat(path); err == nil {
			w.Header().Set("Cache-Control", "public, max-age=2592000")
			http.ServeFile(w, r, path)
			return
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Write([]byte(fallbackSVG))
	})
}
