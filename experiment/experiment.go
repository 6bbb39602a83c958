package experiment

import (
	"fmt"
	"time"

	"digits-nn/database"
	"digits-nn/dataset"
	"digits-nn/neural"
	"digits-nn/stats"
)

// Result is everything a run produces, in input order.
type Result struct {
	Losses      []float64
	Predictions [][]float64
	TestLabels  [][]float64
	Accuracy    float64
	Report      *stats.Report
	InputSize   int
	HiddenSize  int
	RunID       int64
	RunKey      string
}

// Run loads the training set, trains one step per sample, evaluates on the
// test set and records the results where configured.
func Run(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	startTime := time.Now()

	train, err := dataset.Load(cfg.TrainPath)
	if err != nil {
		return nil, fmt.Errorf("load training data: %w", err)
	}
	if train.Len() == 0 {
		return nil, fmt.Errorf("training data %s has no samples", cfg.TrainPath)
	}

	inputSize := train.InputSize()
	hiddenSize := cfg.HiddenSize
	if hiddenSize == 0 {
		hiddenSize = inputSize
	}
	network, err := neural.New(inputSize, hiddenSize, neural.Classes, neural.WithSeed(cfg.Seed))
	if err != nil {
		return nil, err
	}

	if cfg.Verbose {
		fmt.Printf("Loaded %d training samples from %s\n", train.Len(), cfg.TrainPath)
		fmt.Printf("Network: %d -> %d -> %d, learning rate %g\n", inputSize, hiddenSize, neural.Classes, cfg.LearningRate)
	}

	printEvery := cfg.printInterval()
	samples, labels := train.Vectors()
	losses, err := network.TrainSequence(samples, labels, cfg.LearningRate, func(epoch int, loss float64) {
		if cfg.Verbose && epoch%printEvery == 0 {
			fmt.Printf("Epoch %d, Loss: %.4f\n", epoch, loss)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	test, err := dataset.Load(cfg.TestPath)
	if err != nil {
		return nil, fmt.Errorf("load test data: %w", err)
	}
	testSamples, testLabels := test.Vectors()
	predictions, err := network.ForwardBatch(testSamples)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	report, err := stats.NewReport(losses, predictions, testLabels)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Losses:      losses,
		Predictions: predictions,
		TestLabels:  testLabels,
		Accuracy:    report.Accuracy,
		Report:      report,
		InputSize:   inputSize,
		HiddenSize:  hiddenSize,
	}

	if cfg.DBPath != "" {
		if err := record(cfg, result); err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
	}
	if cfg.ReportPath != "" {
		if err := report.Save(cfg.ReportPath); err != nil {
			return nil, fmt.Errorf("save report: %w", err)
		}
	}

	if cfg.Verbose {
		fmt.Printf("Evaluated %d test samples from %s\n", test.Len(), cfg.TestPath)
		fmt.Printf("Accuracy: %.2f%%, mean training loss: %.4f\n", report.Accuracy*100, report.MeanLoss)
		fmt.Printf("Total time: %s\n", time.Since(startTime).Round(time.Millisecond))
	}

	return result, nil
}

func record(cfg Config, result *Result) error {
	db, err := database.NewDatabase(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	run := &database.RunRecord{
		TrainPath:    cfg.TrainPath,
		TestPath:     cfg.TestPath,
		InputSize:    result.InputSize,
		HiddenSize:   result.HiddenSize,
		OutputSize:   neural.Classes,
		LearningRate: cfg.LearningRate,
		Seed:         cfg.Seed,
	}
	runID, err := db.StartRun(run)
	if err != nil {
		return err
	}
	if err := db.RecordLosses(runID, result.Losses); err != nil {
		return err
	}
	if err := db.RecordPredictions(runID, result.Report.Points); err != nil {
		return err
	}
	if err := db.FinishRun(runID, result.Report.Accuracy, result.Report.MeanLoss); err != nil {
		return err
	}

	result.RunID = runID
	result.RunKey = run.Key
	if cfg.Verbose {
		total, err := db.GetTotalRuns()
		if err == nil {
			fmt.Printf("Run %d (%s) recorded, %d runs in database\n", runID, run.Key, total)
		}
	}
	return nil
}
