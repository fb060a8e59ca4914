package tradefile

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strconv"
)

// Write stores a trade list, one value per line, preceded by an optional
// header line. The result is readable by Read (the header is skipped).
func Write(path string, trades []float64, header string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trade file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if header != "" {
		if _, err := fmt.Fprintln(w, header); err != nil {
			return fmt.Errorf("write trade file header: %w", err)
		}
	}
	for _, trade := range trades {
		if _, err := fmt.Fprintln(w, strconv.FormatFloat(trade, 'g', -1, 64)); err != nil {
			return fmt.Errorf("write trade file: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush trade file: %w", err)
	}
	return nil
}

// Generate returns n synthetic trades drawn from a normal distribution.
// Useful for exercising the estimator against a known return profile.
func Generate(n int, mean, stdev float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))

	trades := make([]float64, n)
	for i := range trades {
		trades[i] = mean + stdev*rng.NormFloat64()
	}
	return trades
}
