// Command sokosolve is the command-line front end for the solver engines.
//
// It supports three subcommands:
//   - solve:   solve a single level file and print the push sequence
//   - analyze: static analysis of a level file without searching
//   - bench:   run a YAML suite of levels across engines and print a table
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/sokoban-solver/game/engine"
	"github.com/wricardo/sokoban-solver/solver"
	"github.com/wricardo/sokoban-solver/solver/astar"
	"github.com/wricardo/sokoban-solver/solver/deadlock"
	"github.com/wricardo/sokoban-solver/solver/fess"
)

func main() {
	cmd := &cli.Command{
		Name:  "sokosolve",
		Usage: "Sokoban solver command line",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			solveCommand(),
			analyzeCommand(),
			benchCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildLogger returns a debug logger in verbose mode and a no-op one otherwise
func buildLogger(cmd *cli.Command) (*zap.Logger, error) {
	if cmd.Bool("verbose") {
		return zap.NewDevelopment()
	}
	return zap.NewNop(), nil
}

// loadLevel reads and parses a level file
func loadLevel(path string) (*engine.Board, engine.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, engine.State{}, fmt.Errorf("failed to read level file: %w", err)
	}

	return engine.ParseLevel(string(data))
}

// newSolver constructs the named engine for a board
func newSolver(name string, board *engine.Board, cfg solver.Config) (solver.Solver, error) {
	switch name {
	case "fess", "":
		return fess.New(board, cfg)
	case "astar":
		return astar.New(board, cfg)
	default:
		return nil, fmt.Errorf("unknown engine: %s (use fess or astar)", name)
	}
}

func solveCommand() *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "Solve a level file and print the push sequence",
		ArgsUsage: "<level.txt>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "engine",
				Aliases: []string{"e"},
				Value:   "fess",
				Usage:   "search engine: fess or astar",
			},
			&cli.IntFlag{
				Name:  "max-states",
				Value: solver.DefaultMaxStates,
				Usage: "maximum stored states before giving up",
			},
			&cli.DurationFlag{
				Name:  "time-limit",
				Value: solver.DefaultTimeLimit,
				Usage: "wall-clock limit for the search",
			},
			&cli.IntFlag{
				Name:  "macro-radius",
				Value: solver.DefaultMacroRadius,
				Usage: "straight-line macro push radius",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one level file argument")
			}

			logger, err := buildLogger(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			path := cmd.Args().First()
			board, start, err := loadLevel(path)
			if err != nil {
				return err
			}

			cfg := solver.Config{
				MaxStates:   int(cmd.Int("max-states")),
				TimeLimit:   cmd.Duration("time-limit"),
				MacroRadius: int(cmd.Int("macro-radius")),
				Logger:      logger,
			}

			engineName := cmd.String("engine")
			s, err := newSolver(engineName, board, cfg)
			if err != nil {
				return err
			}

			result, err := s.Solve(ctx, start)
			if err != nil {
				return err
			}

			fmt.Printf("Level: %s • Engine: %s • Status: %s\n", filepath.Base(path), engineName, result.Status)
			fmt.Printf("Explored: %d • Generated: %d • Deadlocks: %d • Duplicates: %d\n",
				result.Counters.Explored, result.Counters.Generated,
				result.Counters.Deadlocks, result.Counters.Duplicates)
			fmt.Printf("Duration: %s\n", result.Duration)

			if result.Solved() {
				verified := solver.Verify(board, start, result)
				fmt.Printf("Verified: %v\n", verified)
				fmt.Printf("\nSolution (%d moves):\n%s\n", len(result.Tokens), strings.Join(result.Tokens, " "))
				return nil
			}

			return fmt.Errorf("no solution found within the configured limits")
		},
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Static analysis of a level file without searching",
		ArgsUsage: "<level.txt>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one level file argument")
			}

			path := cmd.Args().First()
			board, start, err := loadLevel(path)
			if err != nil {
				return err
			}

			fmt.Printf("Level: %s (%dx%d, %d boxes, %d targets)\n\n",
				filepath.Base(path), board.Width, board.Height, len(start.Boxes), len(board.Targets()))
			fmt.Print(board.Render(start))
			fmt.Println()

			detector := deadlock.NewDetector(board)
			fmt.Printf("Corner cells: %d\n", len(detector.CornerCells()))

			packing := fess.NewPackingAnalyzer(board)
			fmt.Printf("Packing order (hardest first):")
			for _, t := range packing.Order() {
				fmt.Printf(" (%d,%d)", t.X, t.Y)
			}
			fmt.Println()

			rooms := fess.NewRoomAnalyzer(board)
			fmt.Printf("Rooms: %d • Tunnels: %d\n", rooms.Rooms(), len(rooms.Tunnels()))

			hotspots := fess.NewHotspotsAnalyzer(board)
			if top, ok := hotspots.TopHotspot(); ok {
				fmt.Printf("Top hotspot: (%d,%d)\n", top.X, top.Y)
			}

			conn := fess.NewConnectivityAnalyzer(board)
			fmt.Printf("Initial connectivity: %d region(s)\n", conn.Feature(start))

			if detector.IsDeadlock(start) {
				fmt.Println("\n⚠️  Start position is deadlocked: the level is unsolvable as given")
			}

			return nil
		},
	}
}

// benchSuite is the YAML schema for a benchmark suite file
type benchSuite struct {
	Name   string       `yaml:"name"`
	Levels []benchLevel `yaml:"levels"`
}

type benchLevel struct {
	ID          string   `yaml:"id"`
	File        string   `yaml:"file"`
	Engines     []string `yaml:"engines"`
	MaxStates   int      `yaml:"max_states"`
	TimeLimitMS int      `yaml:"time_limit_ms"`
}

// benchRow is one finished run in the result table
type benchRow struct {
	Level    string
	Engine   string
	Status   solver.Status
	Moves    int
	Explored int
	Duration time.Duration
	Err      error
}

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Run a YAML suite of levels across engines and print a table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "suite",
				Aliases: []string{"s"},
				Value:   "levels/bench.yaml",
				Usage:   "path to the benchmark suite file",
			},
			&cli.IntFlag{
				Name:    "parallel",
				Aliases: []string{"p"},
				Value:   4,
				Usage:   "number of concurrent solver runs",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := buildLogger(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			suitePath := cmd.String("suite")
			data, err := os.ReadFile(suitePath)
			if err != nil {
				return fmt.Errorf("failed to read suite file: %w", err)
			}

			var suite benchSuite
			if err := yaml.Unmarshal(data, &suite); err != nil {
				return fmt.Errorf("failed to parse suite file: %w", err)
			}

			if len(suite.Levels) == 0 {
				return fmt.Errorf("suite %s names no levels", suitePath)
			}

			suiteDir := filepath.Dir(suitePath)

			// Pre-size the row slice so workers can write without locking
			var runs int
			for _, l := range suite.Levels {
				runs += len(l.Engines)
			}
			rows := make([]benchRow, runs)

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(int(cmd.Int("parallel")))

			idx := 0
			for _, level := range suite.Levels {
				for _, engineName := range level.Engines {
					level, engineName, slot := level, engineName, idx
					idx++
					g.Go(func() error {
						rows[slot] = runBench(gctx, suiteDir, level, engineName, logger)
						return nil
					})
				}
			}

			if err := g.Wait(); err != nil {
				return err
			}

			printBenchTable(suite.Name, rows)
			return nil
		},
	}
}

// runBench executes one level/engine pair and never fails the whole suite
func runBench(ctx context.Context, dir string, level benchLevel, engineName string, logger *zap.Logger) benchRow {
	row := benchRow{
		Level:  level.ID,
		Engine: engineName,
	}

	board, start, err := loadLevel(filepath.Join(dir, level.File))
	if err != nil {
		row.Err = err
		return row
	}

	cfg := solver.Config{
		MaxStates: level.MaxStates,
		Logger:    logger.With(zap.String("level", level.ID), zap.String("engine", engineName)),
	}
	if level.TimeLimitMS > 0 {
		cfg.TimeLimit = time.Duration(level.TimeLimitMS) * time.Millisecond
	}

	s, err := newSolver(engineName, board, cfg)
	if err != nil {
		row.Err = err
		return row
	}

	result, err := s.Solve(ctx, start)
	if err != nil {
		row.Err = err
		return row
	}

	row.Status = result.Status
	row.Moves = len(result.Tokens)
	row.Explored = result.Counters.Explored
	row.Duration = result.Duration
	return row
}

// printBenchTable renders the suite results as an aligned table
func printBenchTable(name string, rows []benchRow) {
	fmt.Printf("Suite: %s (%d runs)\n\n", name, len(rows))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LEVEL\tENGINE\tSTATUS\tMOVES\tEXPLORED\tDURATION")

	solved := 0
	for _, row := range rows {
		if row.Err != nil {
			fmt.Fprintf(w, "%s\t%s\terror: %v\t-\t-\t-\n", row.Level, row.Engine, row.Err)
			continue
		}
		if row.Status == solver.StatusSolved {
			solved++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			row.Level, row.Engine, row.Status, row.Moves, row.Explored, row.Duration.Round(time.Millisecond))
	}
	w.Flush()

	fmt.Printf("\nSolved %d/%d runs\n", solved, len(rows))
}
