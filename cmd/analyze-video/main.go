package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/kdimtricp/formcheck/internal/app"
	"github.com/kdimtricp/formcheck/internal/config"
	"github.com/kdimtricp/formcheck/internal/logging"
	"github.com/kdimtricp/formcheck/internal/processing"
)

func main() {
	var (
		file   = flag.String("file", "", "Path of the video to analyze")
		userID = flag.String("user", "", "User ID that owns the result")
	)
	flag.Parse()

	if *file == "" || *userID == "" {
		log.Fatal("Please provide a video with -file and its owner with -user")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, "text")
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}

	ctx := context.Background()
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatal("Failed to initialize: ", err)
	}
	defer application.Close()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal("Failed to open video: ", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		log.Fatal("Failed to stat video: ", err)
	}

	fmt.Printf("Analyzing %s (%d bytes) in %s mode...\n", filepath.Base(*file), info.Size(), cfg.AnalysisMode)

	res, err := application.Uploads().Upload(ctx, processing.Upload{
		File:     f,
		Filename: filepath.Base(*file),
		Size:     info.Size(),
		UserID:   *userID,
	})
	if err != nil {
		log.Fatal("Analysis failed: ", err)
	}

	fmt.Printf("Job: %s [%s]\n", res.JobID, res.Status)
	if res.Result == nil {
		fmt.Println("Result will be written by the analysis service; poll /api/result/" + res.JobID)
		return
	}

	verdict := "unknown"
	if res.Result.IsCorrect != nil {
		verdict = fmt.Sprintf("%t", *res.Result.IsCorrect)
	}
	fmt.Printf("Exercise: %s\n", res.Result.PredictedExercise)
	fmt.Printf("Correct form: %s\n", verdict)
	for _, line := range res.Result.Feedback {
		fmt.Printf("  - %s\n", line)
	}
	fmt.Println("Analysis complete!")
}
