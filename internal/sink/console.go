// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"

	"github.com/pdiddy/chronam/pkg/types"
)

const ruleWidth = 80

// Console prints one human-readable block per record.
type Console struct {
	w      io.Writer
	host   string
	phrase string
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer, host, phrase string) *Console {
	return &Console{w: w, host: host, phrase: phrase}
}

// Emit writes the record block.
func (c *Console) Emit(rec types.Record) error {
	var b strings.Builder
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	b.WriteString(rec.RawDate() + "\n")
	fmt.Fprintf(&b, "%s %s %s\n", rec.Date, rec.Title, rec.Place)
	b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	b.WriteString(rec.Text + "\n")
	b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	b.WriteString(Permalink(c.host, rec.ID, c.phrase) + "\n")

	_, err := io.WriteString(c.w, b.String())
	return err
}

// Close is a no-op; the console is not owned by the sink.
func (c *Console) Close() error { return nil }

// Permalink returns the page URL with the phrase highlighted.
func Permalink(host, id, phrase string) string {
	raw := strings.TrimRight(host, "/") + id + "#words=" + url.PathEscape(phrase)
	norm, err := purell.NormalizeURLString(raw, purell.FlagsSafe)
	if err != nil {
		return raw
	}
	return norm
}
