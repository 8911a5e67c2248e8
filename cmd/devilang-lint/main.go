package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/virtfuzz/devilang/internal/devmodel"
	"github.com/virtfuzz/devilang/internal/facts"
	"github.com/virtfuzz/devilang/internal/policy"
)

func main() {
	evaluate := flag.Bool("eval", false, "evaluate witnesses so eval-failure rules can fire")
	seed := flag.Int64("seed", 0, "seed for witness evaluation (requires --eval)")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: devilang-lint [--eval --seed N] <config.json>")
		os.Exit(1)
	}

	loader, err := devmodel.NewLoader()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	model, err := loader.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	tables := facts.Build(model, facts.Options{Evaluate: *evaluate, Seed: *seed})

	ctx := context.Background()
	engine, err := policy.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error preparing policy: %v\n", err)
		os.Exit(1)
	}
	result, err := engine.Eval(ctx, tables)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error evaluating policy: %v\n", err)
		os.Exit(1)
	}

	for _, v := range result.Violations {
		fmt.Printf("%s: %s: %s: %s\n", v.Severity, v.Rule, v.Subject, v.Message)
	}
	fmt.Printf("%d violations (%d errors, %d warnings)\n",
		result.Summary.TotalViolations, result.Summary.Errors, result.Summary.Warnings)

	if result.Summary.Errors > 0 {
		os.Exit(1)
	}
}
