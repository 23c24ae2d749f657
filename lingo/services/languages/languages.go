// Package languages exposes the learnable language catalog and the flag code
// the web client shows next to each language.
package languages

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type Language struct {
	Name string `yaml:"name" json:"name"`
	Flag string `yaml:"flag" json:"flag"`
}

type Catalog struct {
	list   []Language
	byName map[string]Language
}

//go:embed languages.yaml
var embeddedCatalog []byte

var defaultCatalog = mustParse(embeddedCatalog)

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	return defaultCatalog
}

func Parse(data []byte) (*Catalog, error) {
	var file struct {
		Languages []Language `yaml:"languages"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse language catalog: %w", err)
	}
	c := &Catalog{byName: make(map[string]Language, len(file.Languages))}
	for _, l := range file.Languages {
		key := strings.ToLower(strings.TrimSpace(l.Name))
		if key == "" || l.Flag == "" {
			return nil, fmt.Errorf("language catalog: entry %q needs a name and a flag", l.Name)
		}
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("language catalog: duplicate language %q", l.Name)
		}
		c.byName[key] = l
		c.list = append(c.list, l)
	}
	return c, nil
}

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) All() []Language {
	out := make([]Language, len(c.list))
	copy(out, c.list)
	return out
}

// Lookup is case-insensitive.
func (c *Catalog) Lookup(name string) (Language, bool) {
	l, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return l, ok
}

func (c *Catalog) Valid(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}
