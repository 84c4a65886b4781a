package handle

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

func (h *Handle) Index(c *gin.Context) {
	h.serveFile(c, "/index.html")
}

// Static resolves any unrouted GET or HEAD against the static root.
// Dotfiles and directories are never served.
func (h *Handle) Static(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		notFound(c)
		return
	}
	h.serveFile(c, c.Request.URL.Path)
}

func (h *Handle) serveFile(c *gin.Context, urlPath string) {
	clean := path.Clean("/" + urlPath)
	for _, seg := range strings.Split(clean, "/") {
		if strings.HasPrefix(seg, ".") {
			notFound(c)
			return
		}
	}
	full := filepath.Join(h.opt.StaticDir, filepath.FromSlash(clean))
	st, err := os.Stat(full)
	if err != nil || st.IsDir() {
		notFound(c)
		return
	}
	c.File(full)
}

func notFound(c *gin.Context) {
	writeJSON(c, http.StatusNotFound, Envelope{Success: false, Error: &ErrorBody{Message: "Not found"}})
}
