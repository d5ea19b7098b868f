package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"tourney/internal/app"
	"tourney/internal/config"
	"tourney/internal/consoleui"
	"tourney/internal/input"
	"tourney/internal/resultstore"
	"tourney/internal/tournament"
)

func main() {
	contendersPath := flag.String("contenders", "", "path to the contenders JSON file")
	frameworkPath := flag.String("framework", "", "path to the assessment framework JSON file")
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	model := flag.String("model", "", "override the judge model for all prompts")
	rounds := flag.Int("rounds", 0, "override rounds per matchup")
	name := flag.String("name", "", "result document name (default: tournament_<timestamp>)")
	flag.Parse()
	if *contendersPath == "" {
		log.Fatal("--contenders is required")
	}
	if *frameworkPath == "" {
		log.Fatal("--framework is required")
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *model != "" {
		cfg.SetModel(*model)
	}
	if *rounds > 0 {
		cfg.Tournament.RoundsPerMatchup = *rounds
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

	matchLog, err := resultstore.NewMatchLog(cfg.Output.MatchLogDir, logger)
	if err != nil {
		log.Fatal(err)
	}

	t := app.NewTournament(cfg, contenders, fw, logger)
	ui := consoleui.New(os.Stdout)
	ui.Banner(fw.Name, len(contenders), len(t.PlanMatches()))

	ctx := context.Background()
	obs := tournament.Observers{&consoleui.Observer{UI: ui}, matchLog}
	if err := t.Run(ctx, coord, obs); err != nil {
		log.Fatal(err)
	}

	docName := *name
	if docName == "" {
		docName = "tournament_" + time.Now().Format("20060102_150405")
	}
	path, err := store.SaveRun(ctx, docName, t.Export())
	if err != nil {
		log.Fatal(err)
	}

	evaluated, failed := 0, 0
	for _, m := range t.Matches {
		switch {
		case m.Result != nil:
			evaluated++
		default:
			failed++
		}
	}
	ui.Completion(evaluated, failed, path)
}
