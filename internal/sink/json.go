// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pdiddy/chronam/pkg/types"
)

// jsonEntry is the element layout of the JSON output array.
type jsonEntry struct {
	Year  string `json:"year"`
	Month string `json:"month"`
	Day   string `json:"day"`
	Date  string `json:"date"`
	Text  string `json:"text"`
}

// JSON streams records into a single JSON array.
type JSON struct {
	f     *os.File
	w     *bufio.Writer
	count int
}

// CreateJSON creates (or truncates) path and starts the array.
func CreateJSON(path string) (*JSON, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if _, err := w.WriteString("["); err != nil {
		f.Close()
		return nil, err
	}
	return &JSON{f: f, w: w}, nil
}

// Emit appends one element.
func (j *JSON) Emit(rec types.Record) error {
	year, month, day := padded(rec)
	data, err := json.Marshal(jsonEntry{Year: year, Month: month, Day: day, Date: rec.Date, Text: rec.Text})
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", rec.ID, err)
	}
	if j.count > 0 {
		if err := j.w.WriteByte(','); err != nil {
			return err
		}
	}
	if _, err := j.w.Write(data); err != nil {
		return err
	}
	j.count++
	return nil
}

// Close terminates the array and closes the file.
func (j *JSON) Close() error {
	if _, err := j.w.WriteString("]\n"); err != nil {
		j.f.Close()
		return err
	}
	if err := j.w.Flush(); err != nil {
		j.f.Close()
		return err
	}
	return j.f.Close()
}
