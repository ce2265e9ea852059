// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()

	r.PageFetched(1, 20)
	r.PageFetched(2, 5)
	r.PageFailed(3, errors.New("boom"))
	r.ItemSkipped("parse")
	r.ItemSkipped("parse")
	r.ItemSkipped("year")
	r.RecordEmitted()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.PagesFetched))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.PagesFailed))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.ItemsSkipped.WithLabelValues("parse")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ItemsSkipped.WithLabelValues("year")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RecordsEmitted))
}

func TestRecorderFinish(t *testing.T) {
	r := NewRecorder()

	r.Finish(1500*time.Millisecond, false)
	assert.Equal(t, 1.5, testutil.ToFloat64(r.ScanDuration))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.LastSuccess))

	r.Finish(time.Second, true)
	assert.Greater(t, testutil.ToFloat64(r.LastSuccess), 0.0)
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.RecordEmitted()

	path := filepath.Join(t.TempDir(), "chronam.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "chronam_records_emitted_total 1")
	assert.Contains(t, string(data), "# HELP chronam_pages_fetched_total")
}
