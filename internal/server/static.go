package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// spaRoots are the files the frontend build places next to index.html. The
// app installs as a PWA, so the manifest and service worker must be served
// from the site root rather than under /assets.
var spaRoots = []string{"favicon.ico", "manifest.webmanifest", "sw.js"}

// mountStatic serves the built frontend. Unknown non-API paths fall back to
// index.html so client-side routing keeps working offline and after reloads.
func (s *Server) mountStatic() {
	if s.staticDir == "" {
		s.logger.Warn("static directory not configured; API only mode")
		return
	}

	info, err := os.Stat(s.staticDir)
	if err != nil || !info.IsDir() {
		s.logger.Warn("static directory missing", "path", s.staticDir, "error", err)
		return
	}

	indexPath := filepath.Join(s.staticDir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		s.logger.Warn("index.html not found", "path", indexPath, "error", err)
	} else {
		s.engine.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})
		s.engine.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
				return
			}
			c.File(indexPath)
		})
	}

	for _, dir := range []string{"assets", "icons"} {
		full := filepath.Join(s.staticDir, dir)
		if _, err := os.Stat(full); err == nil {
			s.engine.StaticFS("/"+dir, gin.Dir(full, true))
		}
	}

	for _, name := range spaRoots {
		full := filepath.Join(s.staticDir, name)
		if _, err := os.Stat(full); err == nil {
			s.engine.StaticFile("/"+name, full)
		}
	}
}
