package core

import (
	"compress/gzip"
	"os"
	"path/filepath"
)

func GetCachedHTML(config Config, route string) ([]byte, bool) {
	cachePath := filepath.Join(config.OutputDir, route, "index.html")

	content, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, false
	}

	return content, true
}

// CachedGzipPath returns the gzip sibling of a cached page, if one exists.
func CachedGzipPath(config Config, route string) (string, bool) {
	gzPath := filepath.Join(config.OutputDir, route, "index.html.gz")
	if _, err := os.Stat(gzPath); err != nil {
		return "", false
	}
	return gzPath, true
}

func SaveCachedHTML(config Config, routeKey string, html []byte) error {
	outDir := filepath.Join(config.OutputDir, routeKey)
	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		return err
	}

	htmlPath := filepath.Join(outDir, "index.html")
	if err := os.WriteFile(htmlPath, html, 0644); err != nil {
		return err
	}

	f, err := os.Create(htmlPath + ".gz")
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	if _, err := gz.Write(html); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}
