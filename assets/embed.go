// assets/embed.go
//
// Files compiled into the binary: the default catalog and the catalog
// database migrations.

package assets

import (
	"embed"
	"io/fs"
)

//go:embed catalog.yaml sql/*.sql
var FS embed.FS

// CatalogYAML returns the default card and chain catalog.
func CatalogYAML() ([]byte, error) {
	return FS.ReadFile("catalog.yaml")
}

// Migrations returns the catalog database schema scripts, rooted at sql/.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		// sql/ is embedded above; Sub only fails on an invalid path.
		panic(err)
	}
	return sub
}
