package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// Classes is the number of digit classes.
const Classes = 10

var (
	// ErrCountMismatch means the file has a different number of images and labels.
	ErrCountMismatch = errors.New("dataset: image and label counts differ")
	// ErrLabelRange means a label row holds a value outside 0..9.
	ErrLabelRange = errors.New("dataset: label out of range")
)

// Sample is one image flattened row by row.
//
// The first pixel of every accumulated image is dropped. The source files
// reserve that position for something undocumented (a count or a sentinel);
// the loader keeps the behaviour without relying on what it means.
type Sample []float64

// Label is a one-hot vector of length Classes.
type Label []float64

// Dataset holds samples paired with labels in file order.
type Dataset struct {
	Samples []Sample
	Labels  []Label
	Digits  []int
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Samples)
}

// InputSize returns the length of the first sample, or 0 for an empty dataset.
func (d *Dataset) InputSize() int {
	if len(d.Samples) == 0 {
		return 0
	}
	return len(d.Samples[0])
}

// Vectors returns samples and labels as plain slices for the network.
func (d *Dataset) Vectors() ([][]float64, [][]float64) {
	samples := make([][]float64, len(d.Samples))
	labels := make([][]float64, len(d.Labels))
	for i := range d.Samples {
		samples[i] = d.Samples[i]
	}
	for i := range d.Labels {
		labels[i] = d.Labels[i]
	}
	return samples, labels
}

// Load reads a dataset file.
func Load(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	ds, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Parse reads a dataset from r.
func Parse(r io.Reader) (*Dataset, error) {
	p := newParser()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := p.feed(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return p.finish()
}

// OneHot returns the label vector for digit.
func OneHot(digit int) (Label, error) {
	if digit < 0 || digit >= Classes {
		return nil, fmt.Errorf("%w: %d", ErrLabelRange, digit)
	}
	label := make(Label, Classes)
	label[digit] = 1.0
	return label, nil
}

// ArgMax returns the index of the largest value, the first one on ties.
func ArgMax(v []float64) int {
	if len(v) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
