// Package sqlite exposes the SQLite storage medium to programs that embed
// shelf collections without the CLI. The implementation stays internal.
package sqlite

import (
	"github.com/mesh-intelligence/shelf/internal/sqlite"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// DatabaseFile is the database created inside the data directory.
const DatabaseFile = sqlite.DatabaseFile

// Open opens (creating if needed) the database in dataDir and returns it
// as a types.Medium.
//
// Example:
//
//	m, err := sqlite.Open(".shelf-db")
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
func Open(dataDir string) (types.Medium, error) {
	s, err := sqlite.Open(dataDir)
	if err != nil {
		return nil, err
	}
	return s, nil
}
