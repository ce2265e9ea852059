// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/chronam/pkg/types"
)

// CSV writes one row per record: year, month, day, text. Commas are
// stripped from the text.
type CSV struct {
	f *os.File
	w *csv.Writer
}

// CreateCSV creates (or truncates) path.
func CreateCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return &CSV{f: f, w: csv.NewWriter(f)}, nil
}

// Emit writes the record row.
func (c *CSV) Emit(rec types.Record) error {
	year, month, day := padded(rec)
	return c.w.Write([]string{year, month, day, strings.ReplaceAll(rec.Text, ",", "")})
}

// Close flushes and closes the file.
func (c *CSV) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.f.Close()
		return err
	}
	return c.f.Close()
}
