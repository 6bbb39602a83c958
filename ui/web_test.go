package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"digits-nn/database"
	"digits-nn/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hot(d int) []float64 {
	v := make([]float64, stats.Classes)
	v[d] = 1
	return v
}

func testReport(t *testing.T) *stats.Report {
	report, err := stats.NewReport(
		[]float64{0.3, 0.2},
		[][]float64{hot(1), hot(4)},
		[][]float64{hot(1), hot(7)},
	)
	require.NoError(t, err)
	return report
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestIndex(t *testing.T) {
	h := NewWebUI(testReport(t), nil).Handler()

	rec := get(t, h, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.True(t, strings.Contains(rec.Body.String(), "Training Loss"))

	assert.Equal(t, http.StatusNotFound, get(t, h, "/nope").Code)
}

func TestReportEndpoints(t *testing.T) {
	h := NewWebUI(testReport(t), nil).Handler()

	var report stats.Report
	rec := get(t, h, "/api/report")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, 0.5, report.Accuracy)

	var losses []LossPoint
	rec = get(t, h, "/api/losses")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&losses))
	assert.Equal(t, []LossPoint{{Epoch: 0, Loss: 0.3}, {Epoch: 1, Loss: 0.2}}, losses)

	var points []stats.Point
	rec = get(t, h, "/api/predictions")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&points))
	assert.Equal(t, []stats.Point{{Index: 0, True: 1, Predicted: 1}, {Index: 1, True: 7, Predicted: 4}}, points)

	var bins []stats.Bin
	rec = get(t, h, "/api/histogram")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&bins))
	assert.Len(t, bins, 2*stats.Classes-1)
}

func TestRunsWithoutDatabase(t *testing.T) {
	h := NewWebUI(testReport(t), nil).Handler()

	rec := get(t, h, "/api/runs")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no run database")
}

func TestRunsWithDatabase(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 3; i++ {
		_, err := db.StartRun(&database.RunRecord{OutputSize: 10})
		require.NoError(t, err)
	}
	h := NewWebUI(testReport(t), db).Handler()

	var runs []database.RunRecord
	rec := get(t, h, "/api/runs?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&runs))
	assert.Len(t, runs, 2)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/runs?limit=x").Code)
}

func TestStartReturnsListenError(t *testing.T) {
	err := NewWebUI(testReport(t), nil).Start(-1)
	assert.Error(t, err)
}
