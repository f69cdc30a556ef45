package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/banjirlab/relief-assistant/internal/adapters/storage"
	"github.com/banjirlab/relief-assistant/internal/application/services"
	"github.com/banjirlab/relief-assistant/internal/evaluation"
	"github.com/banjirlab/relief-assistant/pkg/config"
)

func main() {
	var goldenPath, centersPath string
	var lat, lon float64
	var minAccuracy, minRecall, minMRR float64
	flag.StringVar(&goldenPath, "golden", "", "path to the golden query set (defaults to GOLDEN_QUERIES_FILE)")
	flag.StringVar(&centersPath, "centers", "", "path to the centers file (defaults to CENTERS_FILE)")
	flag.Float64Var(&lat, "lat", 3.2, "evaluation latitude")
	flag.Float64Var(&lon, "lon", 101.65, "evaluation longitude")
	flag.Float64Var(&minAccuracy, "min-accuracy", 0, "fail when top-1 accuracy is below this bar (0 disables)")
	flag.Float64Var(&minRecall, "min-recall", 0, "fail when need recall is below this bar (0 disables)")
	flag.Float64Var(&minMRR, "min-mrr", 0, "fail when MRR is below this bar (0 disables)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if goldenPath == "" {
		goldenPath = cfg.Data.GoldenFile
	}
	if centersPath == "" {
		centersPath = cfg.Data.CentersFile
	}

	ctx := context.Background()

	centers, err := storage.NewFileCenterSource(centersPath).Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load centers: %v", err)
	}

	// An empty report log keeps the run deterministic: ranking is pure
	// capability matching with no live status overrides.
	emptyLog := storage.NewFileReportLog(filepath.Join(os.TempDir(), "relief-eval-reports.json"))
	consensus := services.NewConsensusService(emptyLog, nil, 0, 0)

	extractor := services.NewNeedExtractor()
	recommender := services.NewRecommendationService(
		centers,
		extractor,
		services.NewCapabilityMatcher(),
		consensus,
	)

	// Load golden queries
	queries, err := evaluation.LoadGoldenQueries(goldenPath)
	if err != nil {
		log.Fatalf("Failed to load golden queries: %v", err)
	}
	if err := evaluation.ValidateGoldenQueries(queries); err != nil {
		log.Fatalf("Invalid golden queries: %v", err)
	}

	runner := evaluation.NewRunner(extractor, recommender, lat, lon)
	summary, err := runner.Run(ctx, queries)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	// Output results as JSON
	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))

	guardrails := evaluation.NewGuardrails(evaluation.GuardrailConfig{
		MinTop1Accuracy: minAccuracy,
		MinNeedRecall:   minRecall,
		MinMRR:          minMRR,
	})
	if violations := guardrails.Violations(summary); len(violations) > 0 {
		for _, violation := range violations {
			fmt.Fprintf(os.Stderr, "guardrail violated: %s\n", violation)
		}
		os.Exit(1)
	}
}
