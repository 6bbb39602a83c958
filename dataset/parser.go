package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// LineKind is the token a single input line maps to.
type LineKind int

const (
	Ignored LineKind = iota
	ImageRow
	LabelRow
)

func (k LineKind) String() string {
	switch k {
	case ImageRow:
		return "image"
	case LabelRow:
		return "label"
	default:
		return "ignored"
	}
}

// State is the parser state between lines.
type State int

const (
	ExpectImageOrLabel State = iota
	AccumulatingImage
)

func (s State) String() string {
	if s == AccumulatingImage {
		return "accumulating-image"
	}
	return "expect-image-or-label"
}

// Classify maps a line to its token kind.
func Classify(line string) LineKind {
	line = strings.TrimRight(line, "\r")
	if isDigits(line) {
		return ImageRow
	}
	if len(line) > 1 && line[0] == ' ' && isDigits(line[1:]) {
		return LabelRow
	}
	return Ignored
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

type parser struct {
	state  State
	lineNo int
	pixels []float64
	images int
	ds     *Dataset
}

func newParser() *parser {
	return &parser{state: ExpectImageOrLabel, ds: &Dataset{}}
}

func (p *parser) feed(raw string) error {
	p.lineNo++
	line := strings.TrimRight(raw, "\r")

	switch Classify(line) {
	case ImageRow:
		if p.state == ExpectImageOrLabel {
			p.pixels = make([]float64, 0, len(line))
			p.state = AccumulatingImage
		}
		for i := 0; i < len(line); i++ {
			p.pixels = append(p.pixels, float64(line[i]-'0'))
		}
	case LabelRow:
		digit, err := strconv.Atoi(line[1:])
		if err != nil {
			return fmt.Errorf("line %d: %w: %q", p.lineNo, ErrLabelRange, line)
		}
		label, err := OneHot(digit)
		if err != nil {
			return fmt.Errorf("line %d: %w", p.lineNo, err)
		}
		if p.state == AccumulatingImage {
			p.closeImage()
		}
		p.ds.Labels = append(p.ds.Labels, label)
		p.ds.Digits = append(p.ds.Digits, digit)
	}
	return nil
}

func (p *parser) closeImage() {
	sample := make(Sample, 0, len(p.pixels))
	if len(p.pixels) > 0 {
		sample = append(sample, p.pixels[1:]...)
	}
	p.ds.Samples = append(p.ds.Samples, sample)
	p.images++
	p.pixels = nil
	p.state = ExpectImageOrLabel
}

func (p *parser) finish() (*Dataset, error) {
	images := p.images
	if p.state == AccumulatingImage {
		images++
	}
	if images != len(p.ds.Labels) {
		return nil, fmt.Errorf("%w: %d images, %d labels", ErrCountMismatch, images, len(p.ds.Labels))
	}
	return p.ds, nil
}
