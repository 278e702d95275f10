package assets

import (
	"embed"
	"io/fs"
)

//go:embed known_problems.csv sql/*.sql
var FS embed.FS

// KnownProblems is the default problem set shipped with the binary.
const KnownProblems = "known_problems.csv"

// Migrations returns the sql/ directory as its own filesystem.
func Migrations() (fs.FS, error) {
	return fs.Sub(FS, "sql")
}
