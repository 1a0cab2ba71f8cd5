package core

import (
	"bytes"
	"compress/gzip"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	minjs "github.com/tdewolff/minify/v2/js"
)

var assetMinifier = newAssetMinifier()

func newAssetMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", mincss.Minify)
	m.AddFunc("application/javascript", minjs.Minify)
	return m
}

// MinifyAsset returns the URL to reference a /static/ asset by. Outside prod
// the path is returned unchanged; in prod CSS and JS are minified into
// cacheDir/static and referenced with a content hash.
func MinifyAsset(env, publicDir, path, cacheDir string) string {
	if env != "prod" {
		return path
	}

	ext := filepath.Ext(path)
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, ext)

	var mediaType string
	switch ext {
	case ".css":
		mediaType = "text/css"
	case ".js":
		mediaType = "application/javascript"
	default:
		return path
	}

	if strings.Contains(name, ".min") {
		return path
	}

	publicPath := strings.TrimPrefix(path, "/static/")
	src := filepath.Join(publicDir, publicPath)
	min := filepath.Join(cacheDir, "static", fmt.Sprintf("%s.min%s", name, ext))

	original, err := os.ReadFile(src)
	if err != nil {
		return path
	}

	var buf bytes.Buffer
	if err := assetMinifier.Minify(mediaType, &buf, bytes.NewReader(original)); err != nil {
		return path
	}
	minified := buf.Bytes()

	if err := os.MkdirAll(filepath.Dir(min), os.ModePerm); err != nil {
		return path
	}
	if err := os.WriteFile(min, minified, 0644); err != nil {
		return path
	}

	if f, err := os.Create(min + ".gz"); err == nil {
		gz := gzip.NewWriter(f)
		if _, err := gz.Write(minified); err == nil {
			_ = gz.Close()
		}
		f.Close()
	}

	return fmt.Sprintf("/static/%s.min%s?v=%s", name, ext, contentHash(minified))
}

func contentHash(b []byte) string {
	h := md5.New()
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil))[:6]
}

// TemplateFuncs is the func map every page template is parsed with: the sprig
// HTML helpers plus the asset and component helpers below.
func TemplateFuncs(env, publicDir, cacheDir string) template.FuncMap {
	funcs := sprig.HtmlFuncMap()

	funcs["minify"] = func(path string) string {
		return MinifyAsset(env, publicDir, path, cacheDir)
	}
	funcs["props"] = func(values ...interface{}) map[string]interface{} {
		if len(values)%2 != 0 {
			panic("props must be called with even number of arguments")
		}
		m := make(map[string]interface{}, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				panic("props keys must be strings")
			}
			m[key] = values[i+1]
		}
		return m
	}
	funcs["safeHTML"] = func(s interface{}) template.HTML {
		switch val := s.(type) {
		case template.HTML:
			return val
		case string:
			return template.HTML(val)
		default:
			return ""
		}
	}
	funcs["versioned"] = func(path string) string {
		if !strings.HasPrefix(path, "/static/") {
			return path
		}

		rel := strings.TrimPrefix(path, "/static/")
		locations := []string{
			filepath.Join(publicDir, rel),
			filepath.Join(cacheDir, "static", rel),
		}

		for _, file := range locations {
			if content, err := os.ReadFile(file); err == nil {
				return fmt.Sprintf("/static/%s?v=%s", rel, contentHash(content))
			}
		}

		return path
	}

	return funcs
}
