package main

import (
	"flag"
	"fmt"
	"os"

	"digits-nn/database"
	"digits-nn/experiment"
	"digits-nn/ui"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config")
	trainPath := flag.String("train", "", "Training data file")
	testPath := flag.String("test", "", "Test data file")
	hidden := flag.Int("hidden", 0, "Hidden layer size (default: input size)")
	learningRate := flag.Float64("lr", 0, "Learning rate")
	seed := flag.Int64("seed", 0, "Weight initialization seed")
	printEvery := flag.Int("print-every", 0, "Print the loss every N epochs")
	dbPath := flag.String("db", "", "sqlite file to record the run in")
	reportPath := flag.String("report", "", "JSON file to write the report to")
	serve := flag.Bool("serve", false, "Serve the plots after the run")
	port := flag.Int("port", 8080, "Port of the plot server")
	quiet := flag.Bool("quiet", false, "Do not print progress")
	flag.Parse()

	cfg := experiment.DefaultConfig()
	if *configPath != "" {
		loaded, err := experiment.LoadConfig(*configPath)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		cfg = *loaded
	}

	cfg.ApplyOverrides(experiment.Overrides{
		TrainPath:    *trainPath,
		TestPath:     *testPath,
		HiddenSize:   *hidden,
		LearningRate: *learningRate,
		PrintEvery:   *printEvery,
		Seed:         *seed,
		DBPath:       *dbPath,
		ReportPath:   *reportPath,
	})
	if *quiet {
		cfg.Verbose = false
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Handwritten digit recognition ===")
	result, err := experiment.Run(cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if !*serve {
		return
	}
	if err := runServer(cfg, result, *port); err != nil {
		fmt.Printf("Web server stopped: %v\n", err)
		os.Exit(1)
	}
}

func runServer(cfg experiment.Config, result *experiment.Result, port int) error {
	var db *database.Database
	if cfg.DBPath != "" {
		var err error
		db, err = database.NewDatabase(cfg.DBPath)
		if err != nil {
			fmt.Printf("Warning: could not open the run database: %v\n", err)
		} else {
			defer db.Close()
		}
	}

	webUI := ui.NewWebUI(result.Report, db)
	return webUI.Start(port)
}
