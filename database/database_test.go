package database

import (
	"path/filepath"
	"testing"

	"digits-nn/stats"
)

func TestDatabaseOperations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "test.db")

	db, err := NewDatabase(dbPath)
	if err != nil {
		t.Fatalf("NewDatabase failed: %v", err)
	}
	defer db.Close()

	// Start a run
	run := &RunRecord{
		TrainPath:    "optdigits-orig.tra",
		TestPath:     "optdigits-orig.cv",
		InputSize:    1023,
		HiddenSize:   1023,
		OutputSize:   10,
		LearningRate: 0.01,
		Seed:         42,
	}
	runID, err := db.StartRun(run)
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if runID != 1 {
		t.Errorf("Expected runID = 1, got %d", runID)
	}
	if run.Key == "" || run.ID != runID {
		t.Errorf("StartRun did not fill key and id: %+v", run)
	}

	// Losses
	if err := db.RecordLosses(runID, []float64{0.3, 0.2, 0.1}); err != nil {
		t.Fatalf("RecordLosses failed: %v", err)
	}
	losses, err := db.GetLosses(runID)
	if err != nil {
		t.Fatalf("GetLosses failed: %v", err)
	}
	if len(losses) != 3 || losses[0] != 0.3 || losses[2] != 0.1 {
		t.Errorf("Unexpected losses %v", losses)
	}

	// Predictions
	points := []stats.Point{
		{Index: 0, True: 3, Predicted: 3},
		{Index: 1, True: 7, Predicted: 1},
	}
	if err := db.RecordPredictions(runID, points); err != nil {
		t.Fatalf("RecordPredictions failed: %v", err)
	}
	stored, err := db.GetPredictions(runID)
	if err != nil {
		t.Fatalf("GetPredictions failed: %v", err)
	}
	if len(stored) != 2 || stored[1] != points[1] {
		t.Errorf("Unexpected predictions %v", stored)
	}

	// Unfinished run
	got, err := db.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.FinishedAt != nil {
		t.Error("Run should not be finished yet")
	}
	if got.Key != run.Key || got.HiddenSize != 1023 || got.Seed != 42 {
		t.Errorf("Unexpected run %+v", got)
	}

	// Finish
	if err := db.FinishRun(runID, 0.875, 0.05); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}
	got, err = db.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.FinishedAt == nil {
		t.Error("Run should be finished")
	}
	if got.Accuracy != 0.875 || got.MeanLoss != 0.05 {
		t.Errorf("Unexpected metrics %f %f", got.Accuracy, got.MeanLoss)
	}

	totalRuns, err := db.GetTotalRuns()
	if err != nil {
		t.Fatalf("GetTotalRuns failed: %v", err)
	}
	if totalRuns != 1 {
		t.Errorf("Expected 1 run, got %d", totalRuns)
	}
}

func TestListRuns(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewDatabase failed: %v", err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		if _, err := db.StartRun(&RunRecord{OutputSize: 10, Seed: int64(i)}); err != nil {
			t.Fatalf("StartRun failed: %v", err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != 3 || runs[1].ID != 2 {
		t.Errorf("Expected newest first, got ids %d, %d", runs[0].ID, runs[1].ID)
	}
	if runs[0].Key == runs[1].Key {
		t.Error("Run keys should be unique")
	}
}

func TestDatabasePersistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db1, err := NewDatabase(dbPath)
	if err != nil {
		t.Fatalf("NewDatabase failed: %v", err)
	}
	runID, _ := db1.StartRun(&RunRecord{Key: "persist-key", OutputSize: 10})
	db1.RecordLosses(runID, []float64{0.7})
	db1.Close()

	db2, err := NewDatabase(dbPath)
	if err != nil {
		t.Fatalf("Reopening database failed: %v", err)
	}
	defer db2.Close()

	totalRuns, _ := db2.GetTotalRuns()
	if totalRuns != 1 {
		t.Errorf("Expected 1 stored run, got %d", totalRuns)
	}
	run, err := db2.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Key != "persist-key" {
		t.Errorf("Expected key persist-key, got %s", run.Key)
	}
	losses, _ := db2.GetLosses(runID)
	if len(losses) != 1 || losses[0] != 0.7 {
		t.Errorf("Unexpected losses %v", losses)
	}
}
