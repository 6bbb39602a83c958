package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"digits-nn/stats"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Database wraps the sqlite store of experiment runs
type Database struct {
	db *sql.DB
}

// RunRecord describes one experiment run
type RunRecord struct {
	ID           int64
	Key          string
	TrainPath    string
	TestPath     string
	InputSize    int
	HiddenSize   int
	OutputSize   int
	LearningRate float64
	Seed         int64
	Accuracy     float64
	MeanLoss     float64
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// NewDatabase opens (and creates if needed) the database at dbPath
func NewDatabase(dbPath string) (*Database, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	database := &Database{db: db}

	if err := database.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return database, nil
}

func (d *Database) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_key TEXT NOT NULL UNIQUE,
		started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		finished_at TIMESTAMP,
		train_path TEXT,
		test_path TEXT,
		input_size INTEGER,
		hidden_size INTEGER,
		output_size INTEGER,
		learning_rate FLOAT,
		seed INTEGER,
		accuracy FLOAT,
		mean_loss FLOAT
	);

	CREATE TABLE IF NOT EXISTS losses (
		run_id INTEGER NOT NULL,
		epoch INTEGER NOT NULL,
		loss FLOAT NOT NULL,
		PRIMARY KEY (run_id, epoch),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE TABLE IF NOT EXISTS predictions (
		run_id INTEGER NOT NULL,
		sample_index INTEGER NOT NULL,
		true_label INTEGER NOT NULL,
		predicted_label INTEGER NOT NULL,
		PRIMARY KEY (run_id, sample_index),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_predictions_true_label ON predictions(true_label);
	`

	_, err := d.db.Exec(schema)
	return err
}

// StartRun inserts a new run and returns its id. An empty Key gets a fresh UUID.
func (d *Database) StartRun(run *RunRecord) (int64, error) {
	if run.Key == "" {
		run.Key = uuid.NewString()
	}
	result, err := d.db.Exec(`
		INSERT INTO runs (run_key, train_path, test_path, input_size, hidden_size, output_size, learning_rate, seed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Key, run.TrainPath, run.TestPath, run.InputSize, run.HiddenSize,
		run.OutputSize, run.LearningRate, run.Seed,
	)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	run.ID = id
	return id, nil
}

// FinishRun stores the final metrics of a run
func (d *Database) FinishRun(runID int64, accuracy, meanLoss float64) error {
	_, err := d.db.Exec(
		"UPDATE runs SET finished_at = CURRENT_TIMESTAMP, accuracy = ?, mean_loss = ? WHERE id = ?",
		accuracy, meanLoss, runID,
	)
	return err
}

// RecordLosses stores the per-epoch training losses of a run in one transaction
func (d *Database) RecordLosses(runID int64, losses []float64) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT INTO losses (run_id, epoch, loss) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for epoch, loss := range losses {
		if _, err := stmt.Exec(runID, epoch, loss); err != nil {
			tx.Rollback()
			return fmt.Errorf("epoch %d: %w", epoch, err)
		}
	}
	return tx.Commit()
}

// RecordPredictions stores the evaluation points of a run in one transaction
func (d *Database) RecordPredictions(runID int64, points []stats.Point) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(
		"INSERT INTO predictions (run_id, sample_index, true_label, predicted_label) VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(runID, p.Index, p.True, p.Predicted); err != nil {
			tx.Rollback()
			return fmt.Errorf("sample %d: %w", p.Index, err)
		}
	}
	return tx.Commit()
}

// GetRun returns a run by id
func (d *Database) GetRun(runID int64) (*RunRecord, error) {
	row := d.db.QueryRow(`
		SELECT id, run_key, started_at, finished_at, train_path, test_path, input_size,
			hidden_size, output_size, learning_rate, seed,
			COALESCE(accuracy, 0), COALESCE(mean_loss, 0)
		FROM runs
		WHERE id = ?
	`, runID)
	return scanRun(row)
}

// ListRuns returns the latest runs, newest first
func (d *Database) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := d.db.Query(`
		SELECT id, run_key, started_at, finished_at, train_path, test_path, input_size,
			hidden_size, output_size, learning_rate, seed,
			COALESCE(accuracy, 0), COALESCE(mean_loss, 0)
		FROM runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*RunRecord, error) {
	var r RunRecord
	var finished sql.NullTime
	err := s.Scan(&r.ID, &r.Key, &r.StartedAt, &finished, &r.TrainPath, &r.TestPath,
		&r.InputSize, &r.HiddenSize, &r.OutputSize, &r.LearningRate, &r.Seed,
		&r.Accuracy, &r.MeanLoss)
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	return &r, nil
}

// GetLosses returns the losses of a run ordered by epoch
func (d *Database) GetLosses(runID int64) ([]float64, error) {
	rows, err := d.db.Query("SELECT loss FROM losses WHERE run_id = ? ORDER BY epoch", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var losses []float64
	for rows.Next() {
		var loss float64
		if err := rows.Scan(&loss); err != nil {
			return nil, err
		}
		losses = append(losses, loss)
	}
	return losses, rows.Err()
}

// GetPredictions returns the evaluation points of a run ordered by sample index
func (d *Database) GetPredictions(runID int64) ([]stats.Point, error) {
	rows, err := d.db.Query(`
		SELECT sample_index, true_label, predicted_label
		FROM predictions
		WHERE run_id = ?
		ORDER BY sample_index
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []stats.Point
	for rows.Next() {
		var p stats.Point
		if err := rows.Scan(&p.Index, &p.True, &p.Predicted); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// GetTotalRuns returns the number of stored runs
func (d *Database) GetTotalRuns() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}
