package export

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tutu-network/numgen/internal/domain"
	"github.com/tutu-network/numgen/internal/infra/metrics"
	"github.com/tutu-network/numgen/internal/infra/sqlite"
)

// ErrFileExists is returned by Save when the target exists and overwrite
// was not allowed.
var ErrFileExists = errors.New("output file already exists")

// Exists reports whether path names an existing file.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Save writes a run's records to path in format f. It refuses to replace an
// existing file unless overwrite is set, and refuses an empty record list.
// It returns the number of records written.
func Save(path string, f Format, run domain.Run, records []domain.GeneratedRecord, overwrite bool) (int, error) {
	if len(records) == 0 {
		return 0, domain.ErrNothingToExport
	}
	if Exists(path) {
		if !overwrite {
			return 0, fmt.Errorf("%w: %s", ErrFileExists, path)
		}
		if err := os.Remove(path); err != nil {
			return 0, fmt.Errorf("replace %s: %w", path, err)
		}
	}

	var n int
	var err error
	switch f {
	case FormatCSV:
		n, err = len(records), writeFile(path, func(w io.Writer) error { return WriteCSV(w, records) })
	case FormatText:
		numbers := make([]string, len(records))
		for i, r := range records {
			numbers[i] = r.E164Number
		}
		n, err = len(records), writeFile(path, func(w io.Writer) error { return WriteText(w, numbers) })
	case FormatSQLite:
		n, err = saveSQLite(path, run, records)
	default:
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownFormat, f)
	}
	if err != nil {
		return 0, err
	}
	metrics.RecordsExported.WithLabelValues(string(f)).Add(float64(n))
	return n, nil
}

func saveSQLite(path string, run domain.Run, records []domain.GeneratedRecord) (int, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	return db.SaveRun(run, records)
}
