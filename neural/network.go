package neural

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"digits-nn/dataset"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Classes is the output size used for digit recognition.
const Classes = dataset.Classes

// ErrDimension is returned when a vector does not match the configured layer size.
var ErrDimension = errors.New("neural: dimension mismatch")

// Network is a perceptron with one hidden layer and sigmoid activations.
type Network struct {
	inputSize  int
	hiddenSize int
	outputSize int

	weights1 *mat.Dense // input x hidden
	bias1    []float64
	weights2 *mat.Dense // hidden x output
	bias2    []float64
}

// Option configures a Network at construction.
type Option func(*options)

type options struct {
	rng *rand.Rand
}

// WithSeed makes weight initialization reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.rng = rand.New(rand.NewSource(seed))
	}
}

// New creates a network with the given layer sizes.
func New(inputSize, hiddenSize, outputSize int, opts ...Option) (*Network, error) {
	if inputSize <= 0 || hiddenSize <= 0 || outputSize <= 0 {
		return nil, fmt.Errorf("neural: layer sizes must be positive (got %d, %d, %d)", inputSize, hiddenSize, outputSize)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	n := &Network{
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		outputSize: outputSize,
		bias1:      make([]float64, hiddenSize),
		bias2:      make([]float64, outputSize),
	}
	n.weights1 = randomMatrix(o.rng, inputSize, hiddenSize)
	n.weights2 = randomMatrix(o.rng, hiddenSize, outputSize)
	return n, nil
}

// Uniform in [-1/sqrt(fanIn), 1/sqrt(fanIn)].
func randomMatrix(rng *rand.Rand, rows, cols int) *mat.Dense {
	scale := 1 / math.Sqrt(float64(rows))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * scale
	}
	return mat.NewDense(rows, cols, data)
}

// InputSize returns the expected sample length.
func (n *Network) InputSize() int { return n.inputSize }

// HiddenSize returns the number of hidden units.
func (n *Network) HiddenSize() int { return n.hiddenSize }

// OutputSize returns the length of the output vector.
func (n *Network) OutputSize() int { return n.outputSize }

// Forward runs inference on one sample.
func (n *Network) Forward(sample []float64) ([]float64, error) {
	out, err := n.ForwardBatch([][]float64{sample})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// ForwardBatch runs inference on every sample and returns one output row per sample.
func (n *Network) ForwardBatch(samples [][]float64) ([][]float64, error) {
	if len(samples) == 0 {
		return [][]float64{}, nil
	}
	x, err := n.inputMatrix(samples)
	if err != nil {
		return nil, err
	}
	_, output := n.forward(x)

	rows, _ := output.Dims()
	result := make([][]float64, rows)
	for i := range result {
		result[i] = mat.Row(nil, i, output)
	}
	return result, nil
}

// Train performs one gradient descent step on a single sample and returns
// the loss measured before the update.
func (n *Network) Train(sample, label []float64, learningRate float64) (float64, error) {
	if learningRate <= 0 || math.IsNaN(learningRate) || math.IsInf(learningRate, 0) {
		return 0, fmt.Errorf("neural: learning rate must be a positive number (got %v)", learningRate)
	}
	if len(label) != n.outputSize {
		return 0, fmt.Errorf("%w: label has %d values, network outputs %d", ErrDimension, len(label), n.outputSize)
	}
	x, err := n.inputMatrix([][]float64{sample})
	if err != nil {
		return 0, err
	}

	hidden, output := n.forward(x)
	y := output.RawRowView(0)
	loss := Loss(y, label)

	// Output layer delta: dL/dy * sigmoid'(z2), with dL/dy = 2(y-t)/k.
	k := float64(n.outputSize)
	delta2 := make([]float64, n.outputSize)
	for j := range delta2 {
		delta2[j] = 2 * (y[j] - label[j]) / k * y[j] * (1 - y[j])
	}
	d2 := mat.NewDense(1, n.outputSize, delta2)

	// Hidden layer delta uses the weights before they are updated.
	var back mat.Dense
	back.Mul(d2, n.weights2.T())
	h := hidden.RawRowView(0)
	delta1 := back.RawRowView(0)
	for j := range delta1 {
		delta1[j] *= h[j] * (1 - h[j])
	}
	d1 := mat.NewDense(1, n.hiddenSize, delta1)

	var gradW2 mat.Dense
	gradW2.Mul(hidden.T(), d2)
	var gradW1 mat.Dense
	gradW1.Mul(x.T(), d1)

	gradW2.Scale(learningRate, &gradW2)
	n.weights2.Sub(n.weights2, &gradW2)
	floats.AddScaled(n.bias2, -learningRate, delta2)

	gradW1.Scale(learningRate, &gradW1)
	n.weights1.Sub(n.weights1, &gradW1)
	floats.AddScaled(n.bias1, -learningRate, delta1)

	return loss, nil
}

// Loss is the mean squared error between output and target.
func Loss(output, target []float64) float64 {
	if len(output) == 0 {
		return 0
	}
	diff := make([]float64, len(output))
	floats.SubTo(diff, output, target)
	return floats.Dot(diff, diff) / float64(len(diff))
}

func (n *Network) inputMatrix(samples [][]float64) (*mat.Dense, error) {
	x := mat.NewDense(len(samples), n.inputSize, nil)
	for i, s := range samples {
		if len(s) != n.inputSize {
			return nil, fmt.Errorf("%w: sample %d has %d values, network expects %d", ErrDimension, i, len(s), n.inputSize)
		}
		x.SetRow(i, s)
	}
	return x, nil
}

// forward returns hidden and output activations for a batch, one row per sample.
func (n *Network) forward(x *mat.Dense) (*mat.Dense, *mat.Dense) {
	hidden := &mat.Dense{}
	hidden.Mul(x, n.weights1)
	addBias(hidden, n.bias1)
	hidden.Apply(sigmoidAt, hidden)

	output := &mat.Dense{}
	output.Mul(hidden, n.weights2)
	addBias(output, n.bias2)
	output.Apply(sigmoidAt, output)

	return hidden, output
}

func addBias(m *mat.Dense, bias []float64) {
	rows, _ := m.Dims()
	for i := 0; i < rows; i++ {
		floats.Add(m.RawRowView(i), bias)
	}
}

// Activation
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func sigmoidAt(_, _ int, v float64) float64 {
	return sigmoid(v)
}
