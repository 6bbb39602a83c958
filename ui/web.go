package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"digits-nn/database"
	"digits-nn/stats"
)

// WebUI serves the plots of a finished run
type WebUI struct {
	report *stats.Report
	db     *database.Database
	mutex  sync.Mutex
}

// NewWebUI creates the viewer. db may be nil.
func NewWebUI(report *stats.Report, db *database.Database) *WebUI {
	return &WebUI{
		report: report,
		db:     db,
	}
}

// Handler returns the routes of the viewer
func (w *WebUI) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", w.handleIndex)
	mux.HandleFunc("/api/report", w.handleReport)
	mux.HandleFunc("/api/losses", w.handleLosses)
	mux.HandleFunc("/api/predictions", w.handlePredictions)
	mux.HandleFunc("/api/histogram", w.handleHistogram)
	mux.HandleFunc("/api/runs", w.handleRuns)
	return mux
}

// Start runs the web server on port
func (w *WebUI) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	fmt.Printf("Starting web server on http://localhost%s\n", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      w.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

func (w *WebUI) handleIndex(rw http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(rw, r)
		return
	}
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	rw.Write([]byte(htmlPage))
}

func (w *WebUI) handleReport(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, w.report)
}

// LossPoint is one point of the training loss curve
type LossPoint struct {
	Epoch int     `json:"epoch"`
	Loss  float64 `json:"loss"`
}

func (w *WebUI) handleLosses(rw http.ResponseWriter, r *http.Request) {
	points := make([]LossPoint, len(w.report.Losses))
	for i, loss := range w.report.Losses {
		points[i] = LossPoint{Epoch: i, Loss: loss}
	}
	writeJSON(rw, points)
}

func (w *WebUI) handlePredictions(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, w.report.Points)
}

func (w *WebUI) handleHistogram(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, w.report.Histogram)
}

// handleRuns lists stored runs, ?limit=N (default 20)
func (w *WebUI) handleRuns(rw http.ResponseWriter, r *http.Request) {
	if w.db == nil {
		writeError(rw, http.StatusNotFound, "no run database attached")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(rw, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	w.mutex.Lock()
	runs, err := w.db.ListRuns(limit)
	w.mutex.Unlock()
	if err != nil {
		writeError(rw, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []database.RunRecord{}
	}
	writeJSON(rw, runs)
}

func writeJSON(rw http.ResponseWriter, v any) {
	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		http.Error(rw, "Failed to encode response", http.StatusInternalServerError)
	}
}

func writeError(rw http.ResponseWriter, status int, message string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	json.NewEncoder(rw).Encode(map[string]string{"error": message})
}
