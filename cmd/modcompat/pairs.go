package main

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"modcompat/internal/diff"
	"modcompat/internal/errors"
	"modcompat/internal/facts"
	"modcompat/internal/loader"
	"modcompat/internal/registry"
	"modcompat/internal/report"
)

// modulePair names the old and new manifest of one module.
type modulePair struct {
	Old string
	New string
}

// parsePairs combines the positional OLD NEW with repeated --pair OLD=NEW.
func parsePairs(args, flags []string) ([]modulePair, error) {
	var pairs []modulePair
	switch len(args) {
	case 0:
	case 2:
		pairs = append(pairs, modulePair{Old: args[0], New: args[1]})
	default:
		return nil, fmt.Errorf("expected OLD NEW, got %d arguments", len(args))
	}
	for _, f := range flags {
		old, new, ok := strings.Cut(f, "=")
		if !ok || old == "" || new == "" {
			return nil, fmt.Errorf("--pair %q: expected OLD=NEW", f)
		}
		pairs = append(pairs, modulePair{Old: old, New: new})
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("nothing to compare: give OLD NEW or --pair OLD=NEW")
	}
	return pairs, nil
}

type compareOptions struct {
	PlatformPaths   []string
	PlatformModules []string
	CacheSize       int
	Order           facts.AccessOrder
	Parallelism     int
	Suppressions    *report.Suppressions
	Logger          *slog.Logger
}

// pairResult is the outcome of one pair, kept in input order.
type pairResult struct {
	Pair      modulePair
	Report    *report.Report
	OldDigest string
	NewDigest string
}

// loadPlatform opens the configured platform modules. A module missing from
// every search path is skipped with a warning; comparisons that need it fail
// on resolution instead.
func loadPlatform(opts compareOptions) ([]*loader.Snapshot, error) {
	var out []*loader.Snapshot
	for _, name := range opts.PlatformModules {
		s, err := loader.OpenPlatform(name, opts.PlatformPaths)
		if errors.HasCode(err, errors.ResolutionIO) {
			opts.Logger.Warn("Platform module not found", "module", name, "paths", strings.Join(opts.PlatformPaths, ","))
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// runPairs compares every pair, at most opts.Parallelism at a time. The
// first failure cancels pairs that have not started.
func runPairs(ctx context.Context, pairs []modulePair, opts compareOptions) ([]*pairResult, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	platform, err := loadPlatform(opts)
	if err != nil {
		return nil, err
	}

	limit := opts.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	results := make([]*pairResult, len(pairs))
	opts.Logger.Info("Comparing module pairs", "pairs", len(pairs), "parallelism", min(limit, len(pairs)),
		"platform", len(platform))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(limit, len(pairs)))
	for i, p := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := comparePair(p, platform, opts)
			if err != nil {
				return fmt.Errorf("%s -> %s: %w", p.Old, p.New, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// comparePair loads both manifests and runs the engine over registries of
// their own. Platform snapshots are shared read-only; each side gets fresh
// caches around them.
func comparePair(p modulePair, platform []*loader.Snapshot, opts compareOptions) (*pairResult, error) {
	start := time.Now()
	oldSnap, err := loader.Open(p.Old)
	if err != nil {
		return nil, err
	}
	newSnap, err := loader.Open(p.New)
	if err != nil {
		return nil, err
	}

	old := registry.Cached(oldSnap, opts.CacheSize)
	new := registry.Cached(newSnap, opts.CacheSize)
	oldReg, err := buildRegistry(old, platform, opts)
	if err != nil {
		return nil, err
	}
	newReg, err := buildRegistry(new, platform, opts)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger.With("module", newSnap.Descriptor().Name)
	engine := diff.NewEngine(diff.WithAccessOrder(opts.Order), diff.WithLogger(logger))
	collector := report.NewCollector(opts.Suppressions)
	if err := engine.CompareModules(collector, oldReg, newReg, old, new); err != nil {
		return nil, err
	}

	od, nd := oldSnap.Descriptor(), newSnap.Descriptor()
	r := collector.Build(nd.Name, od.Version, nd.Version)
	hits, misses := new.Stats()
	logger.Info("Pair compared",
		"old", p.Old,
		"new", p.New,
		"changes", r.Summary.TotalChanges,
		"suppressed", r.Summary.Suppressed,
		"required", r.Summary.Required.String(),
		"cacheHits", hits,
		"cacheMisses", misses,
		"duration", time.Since(start))

	return &pairResult{Pair: p, Report: r, OldDigest: oldSnap.Digest(), NewDigest: newSnap.Digest()}, nil
}

func buildRegistry(module *registry.CachedSnapshot, platform []*loader.Snapshot, opts compareOptions) (*registry.Registry, error) {
	name := module.Descriptor().Name
	snaps := []registry.ModuleSnapshot{module}
	for _, pl := range platform {
		// Comparing a platform module itself: its own snapshot wins.
		if pl.Descriptor().Name == name {
			continue
		}
		snaps = append(snaps, registry.Cached(pl, opts.CacheSize))
	}
	return registry.New(snaps, registry.WithLogger(opts.Logger))
}
