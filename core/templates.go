package core

import (
	"bufio"
	"bytes"
	"html/template"
	"os"
	"path/filepath"
	"strings"
)

const layoutMarker = "<!-- layout:"

// Page is a parsed route template ready to execute.
type Page struct {
	tmpl  *template.Template
	entry string
}

func (p *Page) Execute(data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, p.entry, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ComponentsDir is where shared partials live, next to the routes directory.
func ComponentsDir(config Config) string {
	return filepath.Join(filepath.Dir(filepath.Clean(config.RoutesDir)), "components")
}

// LayoutOf returns the layout path named by a leading
// "<!-- layout: path -->" line, resolved against the routes directory's
// parent. It returns "" when the page has no layout.
func LayoutOf(config Config, htmlPath string) string {
	f, err := os.Open(htmlPath)
	if err != nil {
		return ""
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, layoutMarker) && strings.HasSuffix(line, "-->") {
			rel := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, layoutMarker), "-->"))
			if filepath.IsAbs(rel) {
				return rel
			}
			return filepath.Join(filepath.Dir(filepath.Clean(config.RoutesDir)), rel)
		}
		return ""
	}
	return ""
}

// ParsePage parses a route's index.html together with its layout and the
// shared components. With a layout the "layout" template is the entry point.
func ParsePage(config Config, env, htmlPath string) (*Page, error) {
	files := []string{htmlPath}

	components, _ := filepath.Glob(filepath.Join(ComponentsDir(config), "*.html"))
	files = append(files, components...)

	entry := filepath.Base(htmlPath)
	if layout := LayoutOf(config, htmlPath); layout != "" {
		files = append([]string{layout}, files...)
		entry = "layout"
	}

	tmpl, err := template.New(filepath.Base(files[0])).
		Funcs(TemplateFuncs(env, config.PublicDir, config.OutputDir)).
		ParseFiles(files...)
	if err != nil {
		return nil, err
	}

	return &Page{tmpl: tmpl, entry: entry}, nil
}
