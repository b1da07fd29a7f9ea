// Command simctl is the Playoff Odds control CLI.
//
// Usage:
//
//	simctl seed --file league.json
//	simctl standings --season 2025
//	simctl seeds --season 2025
//	simctl run --trials 50000 --seed 42 --weighted
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gridironsim/playoff-odds/internal/config"
	"github.com/gridironsim/playoff-odds/internal/db"
	"github.com/gridironsim/playoff-odds/internal/league"
	"github.com/gridironsim/playoff-odds/internal/seeding"
	"github.com/gridironsim/playoff-odds/internal/sim"
	"github.com/gridironsim/playoff-odds/internal/store"
	"github.com/gridironsim/playoff-odds/internal/tiebreak"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "simctl",
		Short: "Playoff Odds control CLI",
	}

	root.AddCommand(seedCmd())
	root.AddCommand(standingsCmd())
	root.AddCommand(seedsCmd())
	root.AddCommand(runCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// seed command
// --------------------------------------------------------------------------

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load entrants and matchups from a league JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			return runWithDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if err := store.InitSchema(ctx, pool.Pool); err != nil {
					return fmt.Errorf("init schema: %w", err)
				}
				start := time.Now()
				result, err := store.New(pool.Pool).SeedFromFile(ctx, file, logger)
				if err != nil {
					return err
				}
				logger.Info("Seed finished",
					"duration", time.Since(start).Round(time.Millisecond),
					"summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("seed error", "error", e)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to league JSON file")
	return cmd
}

// --------------------------------------------------------------------------
// standings command
// --------------------------------------------------------------------------

func standingsCmd() *cobra.Command {
	var season int
	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Print current standings from decided matchups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				entrants, matchups, err := loadSchedule(ctx, pool, cfg, season)
				if err != nil {
					return err
				}
				standings := league.ComputeStandings(matchups, entrants)

				sorted := make([]league.Entrant, len(entrants))
				copy(sorted, entrants)
				sort.SliceStable(sorted, func(i, j int) bool {
					a, b := sorted[i], sorted[j]
					if a.DivisionKey() != b.DivisionKey() {
						return a.DivisionKey() < b.DivisionKey()
					}
					return standings[a.ID].WinPercentage() > standings[b.ID].WinPercentage()
				})

				division := ""
				for _, e := range sorted {
					if e.DivisionKey() != division {
						division = e.DivisionKey()
						fmt.Printf("\n%s\n", division)
					}
					s := standings[e.ID]
					fmt.Printf("  %-4s %2d-%2d-%d  %.3f  PF %3d PA %3d\n",
						e.Abbreviation,
						s.Overall.Wins, s.Overall.Losses, s.Overall.Ties,
						s.WinPercentage(), s.PointsFor, s.PointsAgainst)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season year (default: configured season)")
	return cmd
}

// --------------------------------------------------------------------------
// seeds command
// --------------------------------------------------------------------------

func seedsCmd() *cobra.Command {
	var season int
	cmd := &cobra.Command{
		Use:   "seeds",
		Short: "Print the current playoff seeding per conference",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				entrants, matchups, err := loadSchedule(ctx, pool, cfg, season)
				if err != nil {
					return err
				}
				standings := league.ComputeStandings(matchups, entrants)
				resolver := tiebreak.NewResolver(rand.New(rand.NewSource(0)), logger)
				engine := seeding.NewEngine(resolver, logger)

				byID := make(map[league.EntrantID]league.Entrant, len(entrants))
				for _, e := range entrants {
					byID[e.ID] = e
				}

				for _, conf := range league.Conferences {
					seeds, err := engine.Seed(entrants, standings, matchups, conf)
					if err != nil {
						return fmt.Errorf("seed %s: %w", conf, err)
					}
					fmt.Printf("\n%s\n", conf)
					for i, id := range seeds {
						s := standings[id]
						fmt.Printf("  %d. %-4s %2d-%2d-%d\n", i+1, byID[id].Abbreviation,
							s.Overall.Wins, s.Overall.Losses, s.Overall.Ties)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season year (default: configured season)")
	return cmd
}

// --------------------------------------------------------------------------
// run command
// --------------------------------------------------------------------------

func runCmd() *cobra.Command {
	var (
		trials    int
		seed      int64
		season    int
		weighted  bool
		keepVig   bool
		scoreMean float64
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a Monte Carlo simulation of the remaining schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				entrants, matchups, err := loadSchedule(ctx, pool, cfg, season)
				if err != nil {
					return err
				}

				opts := sim.Options{
					Trials:         trials,
					WeightedByOdds: weighted,
					RemoveVig:      !keepVig,
					ScoreMean:      scoreMean,
					Logger:         logger,
					Progress: func(pct int) {
						if pct%10 == 0 {
							logger.Info("simulation progress", "percent", pct)
						}
					},
				}
				if cmd.Flags().Changed("seed") {
					opts.Seed = &seed
				}
				if trials <= 0 {
					opts.Trials = cfg.SimDefaultTrials
				}
				if scoreMean <= 0 {
					opts.ScoreMean = cfg.SimScoreMean
				}

				start := time.Now()
				result, err := sim.SimulateSeason(ctx, matchups, entrants, opts)
				if err != nil {
					return err
				}
				logger.Info("Simulation finished",
					"trials", result.Trials,
					"duration", time.Since(start).Round(time.Millisecond))

				printResult(entrants, result)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&trials, "trials", 0, "Trial count (default: configured)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed for reproducible runs")
	cmd.Flags().IntVar(&season, "season", 0, "Season year (default: configured season)")
	cmd.Flags().BoolVar(&weighted, "weighted", false, "Weight game outcomes by moneyline odds")
	cmd.Flags().BoolVar(&keepVig, "keep-vig", false, "Skip vig removal when converting odds")
	cmd.Flags().Float64Var(&scoreMean, "score-mean", 0, "Poisson mean for simulated scores")
	return cmd
}

// printResult writes a per-entrant probability table, best odds first.
func printResult(entrants []league.Entrant, result *sim.Result) {
	sorted := make([]league.Entrant, len(entrants))
	copy(sorted, entrants)
	sort.SliceStable(sorted, func(i, j int) bool {
		a := result.EntrantStats[sorted[i].ID]
		b := result.EntrantStats[sorted[j].ID]
		if a == nil || b == nil {
			return a != nil
		}
		return a.PlayoffProbability() > b.PlayoffProbability()
	})

	fmt.Printf("\n%-5s %9s %9s %9s %8s\n", "TEAM", "PLAYOFFS", "DIVISION", "1ST SEED", "AVG WINS")
	for _, e := range sorted {
		s := result.EntrantStats[e.ID]
		if s == nil {
			continue
		}
		fmt.Printf("%-5s %8.1f%% %8.1f%% %8.1f%% %8.2f\n",
			e.Abbreviation,
			s.PlayoffProbability()*100,
			s.DivisionWinProbability()*100,
			s.FirstSeedProbability()*100,
			s.AverageWins())
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runWithDB handles config loading, DB connection, and context cancellation.
func runWithDB(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}

func loadSchedule(ctx context.Context, pool *db.Pool, cfg *config.Config, season int) ([]league.Entrant, []league.Matchup, error) {
	if season == 0 {
		season = cfg.Season
	}
	s := store.New(pool.Pool)
	entrants, err := s.Entrants(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(entrants) == 0 {
		return nil, nil, fmt.Errorf("no entrants loaded; run `simctl seed` first")
	}
	matchups, err := s.Matchups(ctx, season)
	if err != nil {
		return nil, nil, err
	}
	return entrants, matchups, nil
}
