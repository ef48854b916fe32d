package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tutu-network/numgen/internal/domain"
)

// WriteCSV writes the header row followed by one row per record.
func WriteCSV(w io.Writer, records []domain.GeneratedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.RecordColumns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("write %s: %w", r.E164Number, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteText writes one "+"-prefixed number per line.
func WriteText(w io.Writer, numbers []string) error {
	bw := bufio.NewWriter(w)
	for _, n := range numbers {
		if !strings.HasPrefix(n, "+") {
			n = "+" + n
		}
		if _, err := bw.WriteString(n + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadE164Column reads a CSV with a header row and returns the non-empty
// values of the e164_number column, trimmed.
func ReadE164Column(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", domain.ErrColumnMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := -1
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == domain.RecordColumns[0] {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: %q not in %v", domain.ErrColumnMissing, domain.RecordColumns[0], header)
	}

	cr.FieldsPerRecord = -1
	var out []string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if col >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[col]); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

// CSVToText converts an export CSV into a plain list of E.164 numbers. When
// output is empty it writes numbers.txt next to the input. It returns the
// output path and the number of lines written.
func CSVToText(input, output string) (string, int, error) {
	in, err := os.Open(input)
	if err != nil {
		return "", 0, err
	}
	defer in.Close()

	numbers, err := ReadE164Column(in)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", input, err)
	}

	if output == "" {
		output = filepath.Join(filepath.Dir(input), "numbers.txt")
	}
	if err := writeFile(output, func(w io.Writer) error { return WriteText(w, numbers) }); err != nil {
		return "", 0, err
	}
	return output, len(numbers), nil
}

// writeFile creates path and hands it to fn, removing the file if fn fails.
func writeFile(path string, fn func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
