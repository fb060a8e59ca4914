// Package tradefile reads and writes trade-list files: one fractional
// per-trade return per line (a 1% gain is 0.0100), optionally preceded by
// a descriptive header line.
package tradefile

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Read loads a trade list from a CSV or plain-text file. Every field that
// parses as a number becomes a trade; fields that do not (such as a
// descriptive header line) are skipped. A file that yields no trades at
// all is an error.
func Read(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trade file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read trade file %s: %w", path, err)
	}

	trades := make([]float64, 0, len(records))
	for _, record := range records {
		for _, field := range record {
			value, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				continue
			}
			trades = append(trades, value)
		}
	}

	if len(trades) == 0 {
		return nil, fmt.Errorf("trade file %s contains no parsable trades", path)
	}

	return trades, nil
}
