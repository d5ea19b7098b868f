package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"tourney/internal/analysis"
	"tourney/internal/app"
	"tourney/internal/config"
	"tourney/internal/consoleui"
	"tourney/internal/input"
	"tourney/internal/tournament"
)

// tourneyruns executes the same tournament N times in one process so
// the result documents can feed the consistency analyzer.
func main() {
	contendersPath := flag.String("contenders", "", "path to the contenders JSON file")
	frameworkPath := flag.String("framework", "", "path to the assessment framework JSON file")
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	model := flag.String("model", "", "override the judge model for all prompts")
	count := flag.Int("count", 3, "number of tournaments to run")
	prefix := flag.String("prefix", "batch", "result document name prefix")
	quiet := flag.Bool("quiet", false, "suppress per-match output")
	analyze := flag.Bool("analyze", false, "run consistency analysis over this batch afterwards")
	groupBy := flag.String("group-by", "", "dotted config path for the post-batch analysis grouping")
	flag.Parse()
	if *contendersPath == "" {
		log.Fatal("--contenders is required")
	}
	if *frameworkPath == "" {
		log.Fatal("--framework is required")
	}
	if *count < 1 {
		log.Fatal("--count must be at least 1")
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *model != "" {
		cfg.SetModel(*model)
	}
	if cfg.LLM.Provider == "gemini" && os.Getenv("GEMINI_API_KEY") == "" {
		log.Fatal("GEMINI_API_KEY is not set")
	}

	contenders, err := input.LoadContenders(*contendersPath)
	if err != nil {
		log.Fatal(err)
	}
	fw, err := input.LoadFramework(*frameworkPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	pool, err := app.NewJudgePool(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	coord, err := app.NewCoordinator(cfg, pool, logger)
	if err != nil {
		log.Fatal(err)
	}
	store, err := app.NewResultStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	ts := time.Now().Format("20060102_150405")
	ctx := context.Background()
	for i := 1; i <= *count; i++ {
		log.Printf("tournament %d of %d", i, *count)

		// Fresh contenders per run so stats never carry over.
		cs, err := input.LoadContenders(*contendersPath)
		if err != nil {
			log.Fatal(err)
		}
		t := app.NewTournament(cfg, cs, fw, logger)

		var obs tournament.Observer
		if !*quiet {
			obs = &consoleui.Observer{UI: consoleui.New(os.Stdout)}
		}
		if err := t.Run(ctx, coord, obs); err != nil {
			log.Fatal(err)
		}

		name := fmt.Sprintf("%s_%s_run%02d", *prefix, ts, i)
		path, err := store.SaveRun(ctx, name, t.Export())
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("saved %s", path)
	}
	log.Printf("batch complete: %d tournaments (contenders=%d, framework=%s)", *count, len(contenders), fw.Name)

	if *analyze {
		docs, err := store.LoadAll(ctx, *prefix+"_"+ts+"_*")
		if err != nil {
			log.Fatal(err)
		}
		runs := analysis.ParseRuns(docs, logger)
		metrics := analysis.NewAnalyzer(logger).Analyze(analysis.GroupRuns(runs, *groupBy))
		exporter := analysis.NewExporter(cfg.Output.ResultsDir+"/analysis", logger)
		written, err := exporter.ExportAll(metrics)
		if err != nil {
			log.Fatal(err)
		}
		for _, p := range written {
			log.Printf("analysis wrote %s", p)
		}
	}
}
