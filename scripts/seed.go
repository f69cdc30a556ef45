// Seeds demo status reports so local development shows live center
// conditions without waiting for community submissions.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/banjirlab/relief-assistant/internal/adapters/storage"
	"github.com/banjirlab/relief-assistant/internal/application/services"
	"github.com/banjirlab/relief-assistant/internal/domain/entities"
	"github.com/banjirlab/relief-assistant/pkg/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	if os.Getenv("RESET_REPORTS") == "true" {
		log.Println("RESET_REPORTS=true detected, clearing the report log before seeding")
		if err := os.Remove(cfg.Data.ReportsFile); err != nil && !os.IsNotExist(err) {
			log.Fatalf("Failed to clear report log: %v", err)
		}
	}

	reportLog := storage.NewFileReportLog(cfg.Data.ReportsFile)
	now := time.Now().Unix()

	// One warning each for the school and the hall, and enough critical
	// reports on the community college to cross the consensus threshold, so
	// every status level is visible in the demo.
	reports := []entities.StatusReport{
		{CenterName: "SK Gombak", Status: entities.ReportStatusNoFood, ReporterID: "demo-seeder", Timestamp: now - 1800},
		{CenterName: "Dewan Serbaguna Gombak", Status: entities.ReportStatusNeedBlankets, ReporterID: "demo-seeder", Timestamp: now - 900},
		{CenterName: "Kolej Komuniti Gombak", Status: entities.ReportStatusCriticalIssue, ReporterID: "demo-seeder", Timestamp: now - 1200},
		{CenterName: "Kolej Komuniti Gombak", Status: entities.ReportStatusFull, ReporterID: "demo-seeder-2", Timestamp: now - 600},
	}

	for i := range reports {
		reports[i].ID = uuid.New().String()
		if err := reportLog.Append(ctx, reports[i]); err != nil {
			log.Fatalf("Failed to append report for %s: %v", reports[i].CenterName, err)
		}
	}
	log.Printf("Seeded %d status reports into %s", len(reports), cfg.Data.ReportsFile)

	// Show the consensus the API will compute at startup
	consensus := services.NewConsensusService(reportLog, nil, cfg.Consensus.ReportTimeoutSec, cfg.Consensus.CriticalThreshold)
	consensus.Rebuild(ctx)
	for name, status := range consensus.Snapshot() {
		log.Printf("  %s: %s (%s)", name, status.FinalStatus, status.Reason)
	}
}
