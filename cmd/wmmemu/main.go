// Command wmmemu runs a weak-memory-model litmus-test program under one of
// three operational memory subsystems (sc, tso, pso) and one of three
// transition-selection strategies (random, interactive, mc). Grounded on the
// teacher's cmd/z80opt/main.go for CLI shape (cobra.Command, RunE returning
// an error that main turns into os.Exit(1)) and on the original emulator's
// main.cpp for the positional-argument contract this command preserves.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/oisee/wmm-emulator/pkg/engine"
	"github.com/oisee/wmm-emulator/pkg/report"
	"github.com/oisee/wmm-emulator/pkg/source"
	"github.com/oisee/wmm-emulator/pkg/strategy"
)

func main() {
	var workers int
	var checkpoint string
	var seed uint64
	var seedSet bool
	var pretty bool

	root := &cobra.Command{
		Use:   "wmmemu <input-file> <model> <exec-mode> <tracing> <ip_0> [ip_1 ...]",
		Short: "Operational emulator for concurrent programs under weak memory models",
		Args:  cobra.MinimumNArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			seedSet = cmd.Flags().Changed("seed")
			return run(runArgs{
				inputPath:  args[0],
				model:      args[1],
				execMode:   args[2],
				tracing:    args[3] == "on",
				ipArgs:     args[4:],
				workers:    workers,
				checkpoint: checkpoint,
				seed:       seed,
				seedSet:    seedSet,
				pretty:     pretty,
			})
		},
	}
	root.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "worker pool size for the exhaustive (mc) strategy")
	root.Flags().StringVar(&checkpoint, "checkpoint", "", "checkpoint file to resume/save an exhaustive exploration")
	root.Flags().Uint64Var(&seed, "seed", 0, "deterministic seed for the random strategy")
	root.Flags().BoolVar(&pretty, "pretty", false, "render snapshots and reports as tables instead of plain text")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type runArgs struct {
	inputPath  string
	model      string
	execMode   string
	tracing    bool
	ipArgs     []string
	workers    int
	checkpoint string
	seed       uint64
	seedSet    bool
	pretty     bool
}

func run(a runArgs) error {
	f, err := os.Open(a.inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	descriptor, err := source.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse program: %w", err)
	}

	ips := make([]int, len(a.ipArgs))
	for i, s := range a.ipArgs {
		ip, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid instruction pointer %q: %w", s, err)
		}
		ips[i] = ip
	}

	config, err := engine.NewConfiguration(descriptor, ips, a.model)
	if err != nil {
		return fmt.Errorf("failed to build configuration: %w", err)
	}
	exec := engine.New(config)

	switch a.execMode {
	case "random":
		var rnd *strategy.Random
		if a.seedSet {
			rnd = strategy.NewRandomSeeded(a.seed)
		} else {
			rnd = strategy.NewRandom()
		}
		if err := strategy.Run(exec, rnd); err != nil {
			return fmt.Errorf("random exploration failed: %w", err)
		}
		if a.tracing {
			printSnapshot(exec, a.pretty)
		}
	case "interactive":
		interactive := strategy.NewInteractive(bufio.NewReader(os.Stdin), os.Stdout)
		if err := strategy.Run(exec, interactive); err != nil {
			return fmt.Errorf("interactive exploration failed: %w", err)
		}
		if a.tracing {
			printSnapshot(exec, a.pretty)
		}
	case "mc":
		return runExhaustive(exec, descriptor, len(ips), a)
	default:
		return fmt.Errorf("unsupported execution mode %q", a.execMode)
	}
	return nil
}

func runExhaustive(exec *engine.Executor, descriptor interface {
	RegisterCount() int
	CellCount() int
}, threadCount int, a runArgs) error {
	exhaustive := strategy.NewExhaustive(a.workers)
	var frontier [][]int

	if a.checkpoint != "" {
		if cp, err := report.LoadCheckpoint(a.checkpoint); err == nil {
			for _, term := range cp.Terminals {
				exhaustive.Results.Add(term)
			}
			if cp.Done {
				fmt.Println("checkpoint already covers a completed exploration; nothing to resume")
				printResults(exhaustive.Results, a.pretty)
				return nil
			}
			frontier = cp.Frontier
		}
	}

	// A SIGINT mid-exploration cancels the walk gracefully instead of
	// killing it outright, so the still-open branches can be captured into
	// Exhaustive.Frontier and saved for the next run to pick up.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exploreErr := exhaustive.Explore(ctx, exec, descriptor.CellCount(), threadCount, descriptor.RegisterCount(), frontier...)

	if a.checkpoint != "" {
		cp := &report.Checkpoint{
			Terminals: exhaustive.Results.Terminals(),
			Frontier:  exhaustive.Frontier,
			Done:      exploreErr == nil,
		}
		if err := report.SaveCheckpoint(a.checkpoint, cp); err != nil {
			return fmt.Errorf("failed to save checkpoint: %w", err)
		}
	}

	if exploreErr != nil {
		if errors.Is(exploreErr, context.Canceled) {
			fmt.Fprintf(os.Stderr, "exhaustive exploration interrupted with %d branch(es) left unexplored\n", len(exhaustive.Frontier))
			if a.checkpoint == "" {
				fmt.Fprintln(os.Stderr, "no --checkpoint given; this progress cannot be resumed")
			}
			return nil
		}
		return fmt.Errorf("exhaustive exploration failed: %w", exploreErr)
	}

	printResults(exhaustive.Results, a.pretty)
	return nil
}

func printResults(results *report.Table, pretty bool) {
	if pretty {
		printTerminalsTable(results)
	} else {
		results.Fprint(os.Stdout)
	}
}

func printSnapshot(exec *engine.Executor, pretty bool) {
	if !pretty {
		exec.PrintSnapshot(os.Stdout, 0)
		return
	}
	cfg := exec.Configuration()
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Thread", "Next instruction", "Completed"})
	for _, tid := range cfg.Threads.RunningThreads() {
		thread := cfg.Threads.At(tid)
		t.AppendRow(table.Row{tid, thread.NextInstruction().String(), thread.IsCompleted()})
	}
	t.Render()
}

func printTerminalsTable(results *report.Table) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Memory", "Path length"})
	for i, term := range results.Terminals() {
		t.AppendRow(table.Row{i, fmt.Sprint(term.Memory), len(term.Path)})
	}
	t.Render()
	fmt.Printf("\n%d distinct memory states observed\n", len(results.DistinctMemoryStates()))
}
