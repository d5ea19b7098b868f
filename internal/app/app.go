// Package app wires configuration into the runtime pieces shared by
// the CLI binaries: the judge client pool, the evaluation coordinator,
// and the result store.
package app

import (
	"context"
	"fmt"
	"log"

	"tourney/internal/assessment"
	"tourney/internal/config"
	"tourney/internal/judge"
	"tourney/internal/prompt"
	"tourney/internal/resultstore"
	"tourney/internal/tournament"
)

// NewJudgePool builds the per-model client pool for the configured
// provider. "fake" yields the deterministic offline judge.
func NewJudgePool(cfg *config.Config, logger *log.Logger) (*judge.Pool, error) {
	mws := []judge.Middleware{judge.WithLogging(logger), judge.WithTimeout(cfg.LLM.Timeout())}
	if cfg.LLM.RPS > 0 {
		mws = append(mws, judge.RateLimit(cfg.LLM.RPS, cfg.LLM.Burst))
	}

	switch cfg.LLM.Provider {
	case "gemini":
		return judge.NewPool(func(ctx context.Context, model string) (judge.Client, error) {
			cli, err := judge.NewGeminiClient(ctx, model)
			if err != nil {
				return nil, err
			}
			return judge.Wrap(cli, mws...), nil
		}), nil
	case "fake":
		return judge.NewPool(func(ctx context.Context, model string) (judge.Client, error) {
			return judge.Wrap(judge.NewFakeClient(0), mws...), nil
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// NewCoordinator builds the retrying evaluator from config.
func NewCoordinator(cfg *config.Config, pool *judge.Pool, logger *log.Logger) (*judge.Coordinator, error) {
	if err := prompt.EnsureDefaults(cfg.Prompts.Directory); err != nil {
		return nil, fmt.Errorf("prompt defaults: %w", err)
	}
	prompts, err := prompt.NewManager(cfg.Prompts.Directory, cfg.LLM.ModelMapping, cfg.LLM.DefaultModel)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	ev := judge.NewEvaluator(prompts, pool)
	return judge.NewCoordinator(ev, cfg.LLM.MaxRetries, cfg.LLM.RetryDelay(), logger), nil
}

// NewResultStore builds the store from config: Postgres when a DSN is
// set, the results directory otherwise, with an optional S3 mirror.
func NewResultStore(cfg *config.Config) (*resultstore.Store, error) {
	store, err := resultstore.NewFromEnv(cfg.Output.ResultsDir, cfg.Output.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if cfg.Output.S3Endpoint != "" {
		mirror, err := resultstore.NewS3Mirror(resultstore.S3Config{
			Endpoint:  cfg.Output.S3Endpoint,
			Region:    cfg.Output.S3Region,
			AccessKey: cfg.Output.S3AccessKey,
			SecretKey: cfg.Output.S3SecretKey,
			Bucket:    cfg.Output.S3Bucket,
			UseSSL:    cfg.Output.S3UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 mirror: %w", err)
		}
		store.SetMirror(mirror)
	}
	return store, nil
}

// NewTournament assembles a tournament from loaded inputs and config.
func NewTournament(cfg *config.Config, contenders []*tournament.Contender, fw *assessment.Framework, logger *log.Logger) *tournament.Tournament {
	agg := &tournament.Aggregator{
		Points: cfg.Tournament.PointSystem,
		Scale:  fw.Scoring.Scale,
		Log:    logger,
	}
	schedule := tournament.ScheduleOptions{
		RoundsPerMatchup: cfg.Tournament.RoundsPerMatchup,
		ReverseMatchups:  cfg.Tournament.ReverseMatchups,
	}
	return tournament.New(contenders, fw, cfg.Snapshot(), schedule, agg)
}
