package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jwebster45206/brotato-world/pkg/options"
	"github.com/jwebster45206/brotato-world/pkg/world"
)

func main() {
	seed := flag.Uint64("seed", 0, "base seed; player N is generated with seed+N-1")
	limit := flag.Int("j", runtime.GOMAXPROCS(0), "number of worlds generated at once")
	verbose := flag.Bool("v", false, "log generation progress to stderr")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <player.yaml|dir> [...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	paths, err := expandPaths(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	records, err := generateAll(ctx, paths, *seed, *limit, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generation failed: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write records: %v\n", err)
		os.Exit(1)
	}
}

// expandPaths replaces directories with the player files inside them.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(arg, pattern))
			if err != nil {
				return nil, err
			}
			paths = append(paths, matches...)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no player files found in %v", args)
	}
	return paths, nil
}

// generateAll builds one world per player file. Players are numbered from 1
// in argument order; the output keeps that order. The first failure cancels
// the remaining generations.
func generateAll(ctx context.Context, paths []string, seed uint64, limit int, logger *slog.Logger) ([]*world.Record, error) {
	records := make([]*world.Record, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, path := range paths {
		g.Go(func() error {
			pf, err := options.Load(path)
			if err != nil {
				return err
			}

			player := i + 1
			playerSeed := seed + uint64(i)
			w, err := world.Generate(ctx, player, pf.Options, playerSeed, logger.With("player", player, "file", path))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			records[i] = w.Record(uuid.New(), pf.Name, playerSeed)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
