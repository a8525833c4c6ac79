package migrations

import (
	"io/fs"

	prefgraph "github.com/goliatone/go-prefgraph"
)

func init() {
	coreFS, err := fs.Sub(prefgraph.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return
	}
	Register(coreFS)
}
