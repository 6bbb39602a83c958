package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"digits-nn/dataset"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Classes is the number of digit classes a report covers.
const Classes = dataset.Classes

// Point is one test sample in the true-vs-predicted scatter.
type Point struct {
	Index     int `json:"index"`
	True      int `json:"true"`
	Predicted int `json:"predicted"`
}

// Error returns true minus predicted class.
func (p Point) Error() int {
	return p.True - p.Predicted
}

// Bin is one bar of the error histogram.
type Bin struct {
	Error int `json:"error"`
	Count int `json:"count"`
}

// Report holds the series of one training and evaluation run, in input order.
type Report struct {
	Losses    []float64             `json:"losses"`
	Points    []Point               `json:"points"`
	Errors    []int                 `json:"errors"`
	Histogram []Bin                 `json:"histogram"`
	Confusion [Classes][Classes]int `json:"confusion"`
	Accuracy  float64               `json:"accuracy"`
	MeanLoss  float64               `json:"meanLoss"`
}

// NewReport builds a report from per-sample training losses and the test
// outputs aligned with their one-hot labels.
func NewReport(losses []float64, predictions, labels [][]float64) (*Report, error) {
	if len(predictions) != len(labels) {
		return nil, fmt.Errorf("stats: %d predictions but %d labels", len(predictions), len(labels))
	}

	r := &Report{
		Losses: append([]float64(nil), losses...),
		Points: make([]Point, 0, len(predictions)),
		Errors: make([]int, 0, len(predictions)),
	}
	if len(losses) > 0 {
		r.MeanLoss = stat.Mean(losses, nil)
	}

	counts := make(map[int]int)
	correct := 0
	for i := range predictions {
		if len(predictions[i]) != Classes || len(labels[i]) != Classes {
			return nil, fmt.Errorf("stats: sample %d: expected %d classes, got %d outputs and %d labels",
				i, Classes, len(predictions[i]), len(labels[i]))
		}
		p := Point{
			Index:     i,
			True:      floats.MaxIdx(labels[i]),
			Predicted: floats.MaxIdx(predictions[i]),
		}
		r.Points = append(r.Points, p)
		r.Errors = append(r.Errors, p.Error())
		r.Confusion[p.True][p.Predicted]++
		counts[p.Error()]++
		if p.Error() == 0 {
			correct++
		}
	}

	for e := -(Classes - 1); e <= Classes-1; e++ {
		r.Histogram = append(r.Histogram, Bin{Error: e, Count: counts[e]})
	}
	if len(predictions) > 0 {
		r.Accuracy = float64(correct) / float64(len(predictions))
	}
	return r, nil
}

// Save writes the report as indented JSON.
func (r *Report) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// LoadReport reads a report written by Save.
func LoadReport(path string) (*Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer file.Close()

	r := &Report{}
	if err := json.NewDecoder(file).Decode(r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return r, nil
}

// ClassAccuracy returns per-class recall from the confusion matrix.
func (r *Report) ClassAccuracy() [Classes]float64 {
	var out [Classes]float64
	for c := 0; c < Classes; c++ {
		total := 0
		for _, n := range r.Confusion[c] {
			total += n
		}
		if total > 0 {
			out[c] = float64(r.Confusion[c][c]) / float64(total)
		}
	}
	return out
}
