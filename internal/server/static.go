package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// mountStatic serves the task app frontend alongside the API. Unknown
// non-API paths fall through to index.html so client-side routing keeps
// working; without a frontend build the server answers API requests only.
func (s *Server) mountStatic() {
	if s.staticDir == "" {
		s.logger.Warn("no frontend directory configured, serving API only")
		return
	}

	index := filepath.Join(s.staticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		s.logger.Warn("frontend build not found, serving API only", "path", index)
		return
	}

	s.engine.GET("/", func(c *gin.Context) {
		c.File(index)
	})

	// Vite builds emit assets/; older frontend builds used static/.
	for _, dir := range []string{"assets", "static"} {
		full := filepath.Join(s.staticDir, dir)
		if info, err := os.Stat(full); err == nil && info.IsDir() {
			s.engine.StaticFS("/"+dir, gin.Dir(full, true))
		}
	}
	if favicon := filepath.Join(s.staticDir, "favicon.ico"); exists(favicon) {
		s.engine.StaticFile("/favicon.ico", favicon)
	}

	s.engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
			return
		}
		c.File(index)
	})

	s.logger.Info("frontend mounted", "dir", s.staticDir)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
