package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"notary-dash/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "steady", "Scenario to generate: steady, backlog, churn")
	outDir := flag.String("out", "./.cache", "Output directory for the snapshot")
	boardID := flag.String("board", "board", "Board id used as the event log file name")
	count := flag.Int("count", 300, "Number of cards to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Count:    *count,
		Now:      time.Now().UTC(),
		Seed:     *seed,
	}

	fmt.Printf("Generating scenario '%s' (Count: %d, Seed: %d) to %s...\n", cfg.Scenario, cfg.Count, cfg.Seed, *outDir)

	snap := engine.Generate(cfg)
	if err := engine.Save(*outDir, *boardID, snap); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done: %d events, %d cards.\n", len(snap.Events), len(snap.Details))
}
