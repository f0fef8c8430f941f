// Command investigate is the CLI entry point wiring the engine adapter,
// config, and orchestrator together — the role the teacher's
// tools/tournament/main.go and main.go played for its own engine, adapted
// to drive one UCI engine subprocess (or a pool of them) over a position
// instead of playing a tournament match.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/blunext/chessinvestigator/internal/config"
	"github.com/blunext/chessinvestigator/internal/engineadapter"
	"github.com/blunext/chessinvestigator/internal/goal"
	"github.com/blunext/chessinvestigator/internal/orchestrator"
	"github.com/blunext/chessinvestigator/internal/telemetry"
)

func main() {
	enginePath := flag.String("engine", "", "Path to a UCI engine binary (required)")
	fen := flag.String("fen", "", "Starting FEN (required)")
	move := flag.String("move", "", "Candidate move in SAN to investigate instead of the position itself")
	configPath := flag.String("config", "", "Path to a YAML config file (defaults to spec.md §6 defaults)")
	poolSize := flag.Int("pool", 1, "Number of concurrent engine processes (spec.md §4.1/§5 \"Pool\" configuration)")
	goalJSON := flag.String("goal", "", "Goal AST as JSON to run Target Search instead of a dual-depth investigation")
	logPath := flag.String("log", "investigate.log", "Telemetry log file path")
	pgn := flag.Bool("pgn", false, "Also print the assembled PGN")

	flag.Parse()

	if *enginePath == "" || *fen == "" {
		fmt.Println("Usage: investigate -engine <path> -fen <FEN> [-move SAN] [-goal JSON] [-pool N]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, notes, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config load: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
		for _, n := range notes {
			fmt.Fprintf(os.Stderr, "config: %s\n", n)
		}
	}

	eng, err := buildEngine(*enginePath, *poolSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine: %v\n", err)
		os.Exit(1)
	}
	defer eng.Close()

	logger, err := telemetry.NewLogger(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	orch := orchestrator.New(eng, cfg, logger, func(e orchestrator.Event) {
		fmt.Fprintf(os.Stderr, "[%s] %s %s\n", e.Type, e.FEN, e.Message)
	})

	ctx := context.Background()

	if *goalJSON != "" {
		runTargetSearch(ctx, orch, *fen, *goalJSON, cfg)
		return
	}

	result, err := orch.Investigate(ctx, *fen, *move)
	if err != nil {
		fmt.Fprintf(os.Stderr, "investigate: %v\n", err)
		os.Exit(1)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(encoded))

	if *pgn {
		text, err := orch.AssemblePGN(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pgn: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(text)
	}
}

func buildEngine(path string, poolSize int) (engineadapter.Engine, error) {
	if poolSize <= 1 {
		proc, err := engineadapter.NewUCIProcess(path)
		if err != nil {
			return nil, err
		}
		return engineadapter.NewQueue(proc), nil
	}

	workers := make([]engineadapter.Engine, poolSize)
	for i := range workers {
		proc, err := engineadapter.NewUCIProcess(path)
		if err != nil {
			for j := 0; j < i; j++ {
				workers[j].Close()
			}
			return nil, err
		}
		workers[i] = proc
	}
	return engineadapter.NewPool(workers), nil
}

func runTargetSearch(ctx context.Context, orch *orchestrator.Orchestrator, fen, goalJSON string, cfg config.Config) {
	goalNode, err := decodeGoal(goalJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "goal: %v\n", err)
		os.Exit(1)
	}

	result, assumptions := orch.InvestigateTarget(ctx, fen, goalNode, cfg.TargetSearch)
	encoded, err := json.MarshalIndent(struct {
		Result      interface{} `json:"result"`
		Assumptions []string    `json:"assumptions,omitempty"`
	}{result, assumptions}, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(encoded))
}

// decodeGoal unmarshals the goal AST from spec.md §4.7 directly into
// goal.Node: its fields are already plain exported values, including the
// recursive Children []*Node composite list.
func decodeGoal(raw string) (*goal.Node, error) {
	var n goal.Node
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&n); err != nil {
		return nil, err
	}
	return &n, nil
}
