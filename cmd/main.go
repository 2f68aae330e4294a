package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gmorley/scorecast/internal/logger"
	"github.com/gmorley/scorecast/pkg/server"
	"github.com/gmorley/scorecast/pkg/util/predict"
)

func main() {
	// Configure logging
	logger.SetShowDateTime(true)
	logger.SetLogOutput('b')

	logger.Info("Starting github.com/gmorley/scorecast application")

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	if err := predict.InitDatabase(predict.Config.DbPath); err != nil {
		logger.Error("Failed to open database:", err)
		os.Exit(1)
	}
	defer predict.CloseDatabase()

	var err error
	switch os.Args[1] {
	case "update":
		err = runUpdate()
	case "train":
		err = runTrain()
	case "predict":
		err = runPredict(os.Args[2:])
	case "evaluate":
		err = runEvaluate()
	case "serve":
		err = runServe()
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("Command failed:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: scorecast <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "  update                      download configured seasons and rebuild features")
	fmt.Fprintln(os.Stderr, "  train                       fit the goal models and persist them")
	fmt.Fprintln(os.Stderr, "  predict <home> <away>       forecast one fixture from persisted data")
	fmt.Fprintln(os.Stderr, "  evaluate                    report holdout metrics for the current corpus")
	fmt.Fprintln(os.Stderr, "  serve                       run the prediction web service")
}

// runUpdate downloads every configured season and rebuilds all persisted
// artifacts from scratch
func runUpdate() error {
	logger.Info("Starting historical data load...")
	snap, err := predict.GetDatasourceInstance().Update()
	if err != nil {
		return err
	}
	logger.Info("Loaded", snap.Ledger.Len(), "matches covering", snap.Registry.Len(), "teams")
	return nil
}

// refreshService reloads the feature snapshot from the persisted ledger and
// publishes it to the prediction service
func refreshService() (*predict.PredictionService, *predict.Snapshot, error) {
	svc := predict.GetPredictionService()
	snap, err := svc.RefreshSnapshot()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load matches, run 'scorecast update' first: %w", err)
	}
	return svc, snap, nil
}

func runTrain() error {
	svc, snap, err := refreshService()
	if err != nil {
		return err
	}
	if err := svc.Train(snap); err != nil {
		return err
	}
	return svc.SaveModel()
}

func runPredict(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("predict requires exactly two team names")
	}
	svc, snap, err := refreshService()
	if err != nil {
		return err
	}
	if err := svc.LoadModel(); err != nil {
		logger.Warn("No persisted model, training from scratch")
		if err := svc.Train(snap); err != nil {
			return err
		}
	}
	prediction, err := svc.PredictScore(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Println(prediction.Scoreline())
	return nil
}

func runEvaluate() error {
	_, snap, err := refreshService()
	if err != nil {
		return err
	}
	report, err := predict.Evaluate(snap)
	if err != nil {
		return err
	}
	fmt.Printf("train rows: %d  test rows: %d\n", report.TrainRows, report.TestRows)
	fmt.Printf("home goals: mse %.3f  mae %.3f  r2 %.3f\n", report.Home.MSE, report.Home.MAE, report.Home.R2)
	fmt.Printf("away goals: mse %.3f  mae %.3f  r2 %.3f\n", report.Away.MSE, report.Away.MAE, report.Away.R2)
	fmt.Printf("exact scoreline rate: %.3f\n", report.ExactRate)
	return nil
}

func runServe() error {
	svc, snap, err := refreshService()
	if err != nil {
		return err
	}
	if err := svc.Train(snap); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.NewServer(svc).Start(ctx, predict.Config.ServerAddr)
}
