package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// List cells are comma-space joined; the same separator splits them back.
const listSeparator = ", "

// Explode turns a column of comma-space-delimited lists into one row per
// item. All other columns are copied unchanged, the list column is removed,
// and the singular column is appended at the end of the header. An empty
// cell still yields one row with an empty item.
func Explode(header []string, rows [][]string, column, renamed string) ([]string, [][]string, error) {
	colIdx := -1
	for i, name := range header {
		if CleanColumnName(name) == column {
			colIdx = i
			break
		}
	}
	if colIdx < 0 {
		return nil, nil, fmt.Errorf("column %q not found in header", column)
	}

	outHeader := make([]string, 0, len(header))
	for i, name := range header {
		if i != colIdx {
			outHeader = append(outHeader, name)
		}
	}
	outHeader = append(outHeader, renamed)

	var outRows [][]string
	for _, row := range rows {
		listCell := ""
		if colIdx < len(row) {
			listCell = row[colIdx]
		}
		// strings.Split("") yields one empty item, which is exactly the
		// "empty cell still produces one row" rule.
		for _, item := range strings.Split(listCell, listSeparator) {
			out := make([]string, 0, len(outHeader))
			for i := range header {
				if i == colIdx {
					continue
				}
				if i < len(row) {
					out = append(out, row[i])
				} else {
					out = append(out, "")
				}
			}
			out = append(out, item)
			outRows = append(outRows, out)
		}
	}
	return outHeader, outRows, nil
}

// ExplodeFile reads a CSV, explodes the named list column, and writes the
// result to outPath.
func ExplodeFile(inPath, outPath, column, renamed string) error {
	f, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if len(all) == 0 {
		return fmt.Errorf("input %s is empty", inPath)
	}

	header, rows, err := Explode(all[0], all[1:], column, renamed)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	w.Flush()
	return w.Error()
}
