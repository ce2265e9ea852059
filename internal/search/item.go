// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/chronam/pkg/types"
)

// RawItem is one entry of a result page as the API returns it.
type RawItem struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	OCR   string `json:"ocr_eng"`
	Title string `json:"title"`
	Place string `json:"place_of_publication"`
}

// Normalize converts a RawItem into a Record. The date is sliced at fixed
// widths, so it must be exactly eight ASCII digits.
func Normalize(item RawItem) (types.Record, error) {
	d := item.Date
	if len(d) != 8 || !isDigits(d) {
		return types.Record{}, fmt.Errorf("%w: item %s: date %q is not YYYYMMDD", ErrParse, item.ID, d)
	}

	year, _ := strconv.Atoi(d[0:4])
	month, _ := strconv.Atoi(d[4:6])
	day, _ := strconv.Atoi(d[6:8])

	return types.Record{
		ID:    item.ID,
		Year:  year,
		Month: month,
		Day:   day,
		Date:  d[0:4] + "-" + d[4:6] + "-" + d[6:8],
		Title: item.Title,
		Place: item.Place,
		// The API escapes line breaks in OCR text as a literal backslash-n.
		Text: strings.ReplaceAll(item.OCR, `\n`, "\n"),
	}, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
