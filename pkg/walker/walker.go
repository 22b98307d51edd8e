// Package walker non-recursively enumerates .job files in a directory.
package walker

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// MaxJobFileNameSize bounds the byte length of a produced job path.
const MaxJobFileNameSize = 256

// List enumerates every entry directly inside dirPath whose name
// contains the substring ".job", returning "<dirPath>/<entry>" for each
// (a "/" is inserted only if dirPath does not already end with one).
// An entry whose resulting path would exceed MaxJobFileNameSize is
// skipped with a diagnostic rather than failing the whole walk.
func List(dirPath string, diagnostics zerolog.Logger) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("walker: read directory %s: %w", dirPath, err)
	}

	sep := "/"
	if strings.HasSuffix(dirPath, "/") {
		sep = ""
	}

	var jobs []string
	for _, e := range entries {
		if e.IsDir() || !strings.Contains(e.Name(), ".job") {
			continue
		}
		path := dirPath + sep + e.Name()
		if len(path) > MaxJobFileNameSize {
			diagnostics.Warn().Str("path", path).Msg("job file path too long, skipping")
			continue
		}
		jobs = append(jobs, path)
	}
	return jobs, nil
}
