// internal/catalog/load.go
//
// Reads catalogs from YAML.
//
// Sources, in order of preference (see Load):
//   1. An explicit file path (CATALOG_FILE).
//   2. The default catalog embedded in the assets package.
//
// File layout:
//
//	cards:
//	  - {category: source, name: "Cours d'eau", image: /data/cours_deau.png}
//	chains:
//	  - name: buffer
//	    steps:
//	      - {category: source, name: "Cours d'eau"}
//
// Category values accept the legacy aliases "data" and "processing".

package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pierridotite/QGISGame/assets"
)

// File is the on-disk representation of a catalog.
type File struct {
	Cards  []Card      `yaml:"cards"`
	Chains []ChainSpec `yaml:"chains"`
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for i := range f.Cards {
		f.Cards[i].Name = strings.TrimSpace(f.Cards[i].Name)
	}
	for i := range f.Chains {
		for j := range f.Chains[i].Steps {
			f.Chains[i].Steps[j].Name = strings.TrimSpace(f.Chains[i].Steps[j].Name)
		}
	}
	return New(f.Cards, f.Chains)
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	data, err := assets.CatalogYAML()
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	return Parse(data)
}

// Marshal encodes c back into the file layout accepted by Parse.
func Marshal(c *Catalog) ([]byte, error) {
	return yaml.Marshal(File{Cards: c.Cards(), Chains: c.Specs()})
}
