package neural

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// TrainSequence trains on every sample in order, one step per sample, and
// returns the loss of each step. observe, if not nil, sees every step.
func (n *Network) TrainSequence(samples, labels [][]float64, learningRate float64, observe func(epoch int, loss float64)) ([]float64, error) {
	if len(samples) != len(labels) {
		return nil, fmt.Errorf("neural: %d samples but %d labels", len(samples), len(labels))
	}
	losses := make([]float64, 0, len(samples))
	for epoch := range samples {
		loss, err := n.Train(samples[epoch], labels[epoch], learningRate)
		if err != nil {
			return losses, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		losses = append(losses, loss)
		if observe != nil {
			observe(epoch, loss)
		}
	}
	return losses, nil
}

// Predict returns the index of the strongest output for sample.
func (n *Network) Predict(sample []float64) (int, error) {
	out, err := n.Forward(sample)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(out), nil
}

// Evaluate returns the fraction of samples whose strongest output matches
// the hot index of its label.
func (n *Network) Evaluate(samples, labels [][]float64) (float64, error) {
	if len(samples) != len(labels) {
		return 0, fmt.Errorf("neural: %d samples but %d labels", len(samples), len(labels))
	}
	if len(samples) == 0 {
		return 0, nil
	}

	outputs, err := n.ForwardBatch(samples)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := range outputs {
		if len(labels[i]) != n.outputSize {
			return 0, fmt.Errorf("%w: label %d has %d values, network outputs %d", ErrDimension, i, len(labels[i]), n.outputSize)
		}
		if floats.MaxIdx(outputs[i]) == floats.MaxIdx(labels[i]) {
			correct++
		}
	}
	return float64(correct) / float64(len(samples)), nil
}
