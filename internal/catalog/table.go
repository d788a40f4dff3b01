package catalog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// table is a parsed delimited file: a header mapped to column indexes and the
// data rows that follow it.
type table struct {
	columns map[string]int
	rows    [][]string
}

// detectDelimiter picks ';' or ',' based on which one appears more often in
// the header line.
func detectDelimiter(header string) rune {
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}

func headerKey(name string) string {
	name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	return strings.ToLower(name)
}

func readTable(r io.Reader, delimiter rune) (table, error) {
	buffered := bufio.NewReader(r)
	if delimiter == 0 {
		peek, err := buffered.Peek(4096)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return table{}, err
		}
		firstLine, _, _ := strings.Cut(string(peek), "\n")
		delimiter = detectDelimiter(firstLine)
	}

	reader := csv.NewReader(buffered)
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return table{}, fmt.Errorf("empty table, a header row is required")
	}
	if err != nil {
		return table{}, err
	}

	t := table{columns: make(map[string]int, len(header))}
	for i, name := range header {
		t.columns[headerKey(name)] = i
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return table{}, err
		}
		blank := true
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
			if row[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// column returns the index of the first header matching one of names, or -1.
func (t table) column(names ...string) int {
	for _, n := range names {
		idx, ok := t.columns[n]
		if ok {
			return idx
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
