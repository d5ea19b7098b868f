package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"tourney/internal/analysis"
	"tourney/internal/app"
	"tourney/internal/config"
)

// consistency loads saved tournament exports, groups them, and writes
// cross-run consistency reports.
func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	pattern := flag.String("pattern", "*", "glob filter over result document names")
	groupBy := flag.String("group-by", "", "dotted config path to group runs by, e.g. config.llm.default_model")
	outDir := flag.String("out", "", "analysis output directory (default: <results_dir>/analysis)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	store, err := app.NewResultStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	docs, err := store.LoadAll(ctx, *pattern)
	if err != nil {
		log.Fatal(err)
	}
	if len(docs) == 0 {
		log.Fatalf("no result documents match pattern %q", *pattern)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	runs := analysis.ParseRuns(docs, logger)
	if len(runs) == 0 {
		log.Fatal("no parseable result documents")
	}
	groups := analysis.GroupRuns(runs, *groupBy)

	analyzer := analysis.NewAnalyzer(logger)
	metrics := analyzer.Analyze(groups)

	dir := *outDir
	if dir == "" {
		dir = cfg.Output.ResultsDir + "/analysis"
	}
	exporter := analysis.NewExporter(dir, logger)
	written, err := exporter.ExportAll(metrics)
	if err != nil {
		log.Fatal(err)
	}

	printSummary(metrics)
	for _, p := range written {
		fmt.Println("wrote", p)
	}
}

func printSummary(metrics map[string]*analysis.GroupMetrics) {
	cmp := analysis.Compare(metrics)
	fmt.Printf("analyzed %d group(s)\n", len(metrics))
	if cmp.MostStableRankings != "" {
		fmt.Println("most stable rankings:      ", cmp.MostStableRankings)
	}
	if cmp.MostConsistentWinRate != "" {
		fmt.Println("most consistent win rates: ", cmp.MostConsistentWinRate)
	}
	if cmp.MostConsistentMatchup != "" {
		fmt.Println("most consistent matchups:  ", cmp.MostConsistentMatchup)
	}
	if cmp.MostConsistentScores != "" {
		fmt.Println("most consistent scores:    ", cmp.MostConsistentScores)
	}
}
