package sitemap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FixedPage is one hand-maintained marketing URL.
type FixedPage struct {
	Path       string  `yaml:"path"`
	ChangeFreq string  `yaml:"changefreq"`
	Priority   float64 `yaml:"priority"`
	LastMod    string  `yaml:"lastmod"`
}

type fixedFile struct {
	Pages []FixedPage `yaml:"pages"`
}

// LoadFixedPages reads the fixed page list. A missing file yields no pages
// and no error.
func LoadFixedPages(path string) ([]FixedPage, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read fixed sitemap: %w", err)
	}
	return ParseFixedPages(data)
}

func ParseFixedPages(data []byte) ([]FixedPage, error) {
	var f fixedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixed sitemap: %w", err)
	}
	for i, p := range f.Pages {
		if !strings.HasPrefix(p.Path, "/") {
			return nil, fmt.Errorf("fixed sitemap page %d: path %q must start with /", i, p.Path)
		}
		if p.Priority < 0 || p.Priority > 1 {
			return nil, fmt.Errorf("fixed sitemap page %d: priority must be within [0,1]", i)
		}
	}
	return f.Pages, nil
}

func (p FixedPage) entry(baseURL string) urlEntry {
	e := urlEntry{
		Loc:        baseURL + p.Path,
		LastMod:    p.LastMod,
		ChangeFreq: p.ChangeFreq,
	}
	if p.Priority > 0 {
		e.Priority = strconv.FormatFloat(p.Priority, 'f', 1, 64)
	}
	return e
}
