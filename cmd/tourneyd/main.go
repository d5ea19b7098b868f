package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tourney/internal/app"
	"tourney/internal/config"
	"tourney/internal/input"
	"tourney/internal/resultstore"
	"tourney/internal/tournament"
	"tourney/internal/web"
)

// tourneyd runs a tournament while serving live progress over HTTP and
// websocket, so a dashboard can follow matches as they are judged.
func main() {
	contendersPath := flag.String("contenders", "", "path to the contenders JSON file")
	frameworkPath := flag.String("framework", "", "path to the assessment framework JSON file")
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	model := flag.String("model", "", "override the judge model for all prompts")
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

	hub := web.NewHub(logger)
	handler := web.NewHandler(hub)
	srv := web.NewServer(cfg.Web.Port, handler.Routes(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() { serverErr <- srv.Start() }()

	t := app.NewTournament(cfg, contenders, fw, logger)
	t.PlanMatches()
	handler.SetTournament(t)
	logger.Printf("tournament %s: %d contenders, %d matches", t.ID, len(contenders), len(t.Matches))

	runErr := make(chan error, 1)
	go func() {
		obs := tournament.Observers{web.NewLiveObserver(hub, handler), matchLog}
		runErr <- t.Run(ctx, coord, obs)
	}()

	select {
	case err := <-runErr:
		if err != nil {
			logger.Printf("tournament aborted: %v", err)
		} else {
			docName := *name
			if docName == "" {
				docName = "tournament_" + time.Now().Format("20060102_150405")
			}
			if path, err := store.SaveRun(context.Background(), docName, t.Export()); err != nil {
				logger.Printf("save results: %v", err)
			} else {
				logger.Printf("results saved to %s", path)
			}
			// Keep serving final standings until interrupted.
			<-ctx.Done()
		}
	case err := <-serverErr:
		if err != nil {
			log.Fatal(err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}
