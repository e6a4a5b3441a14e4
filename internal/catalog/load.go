package catalog

import (
	_ "embed"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"combitest/internal/domain"
)

//go:embed default.yaml
var defaultYAML []byte

// File is the on-disk catalog document. Rules are decoded lazily by the
// rules package so the catalog stays free of predicate concerns.
type File struct {
	Dimensions []domain.Dimension `yaml:"dimensions"`
	Rules      yaml.Node          `yaml:"rules,omitempty"`
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, *File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, errors.Wrap(err, "decode catalog")
	}
	c, err := New(f.Dimensions...)
	if err != nil {
		return nil, nil, err
	}
	return c, &f, nil
}

// Load reads and parses the catalog file at path. An empty path selects
// the built-in catalog.
func Load(path string) (*Catalog, *File, error) {
	if path == "" {
		return Parse(defaultYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read catalog %s", path)
	}
	return Parse(data)
}

// Default returns the built-in ten dimension catalog.
func Default() *Catalog {
	c, _, err := Parse(defaultYAML)
	if err != nil {
		panic(err)
	}
	return c
}
