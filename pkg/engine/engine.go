// Package engine drives the specialized matchers over the semantic diff facts
// of file-level diffs.
//
// Each file diff owns its tree pair, its mapping store and its optimization
// context. Matching one file is synchronous; MatchAll spreads independent
// files across a bounded worker group.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/astmatch/pkg/mapping"
	"github.com/Sumatoshi-tech/astmatch/pkg/matching"
	"github.com/Sumatoshi-tech/astmatch/pkg/model"
	"github.com/Sumatoshi-tech/astmatch/pkg/observability"
	"github.com/Sumatoshi-tech/astmatch/pkg/tree"
)

// ErrMissingTree is returned when a file diff lacks its source or destination tree.
var ErrMissingTree = errors.New("file diff is missing a tree")

// tracerName is the default OTel tracer name for the engine.
const tracerName = "astmatch"

// FileDiff is the input for one file: the before/after trees and the facts
// computed upstream for them. Trees and facts are only read.
type FileDiff struct {
	SrcPath string
	DstPath string
	Src     *tree.Tree
	Dst     *tree.Tree
	Facts   []model.Fact
}

// Result is the outcome of matching one file diff.
type Result struct {
	SrcPath string
	DstPath string
	Store   *mapping.Store

	// PerKind counts the mappings each fact kind added.
	PerKind  map[model.Kind]int
	Stats    mapping.Stats
	Facts    int
	Skipped  int
	Duration time.Duration
}

// Mappings returns the number of pairs in the final store.
func (r *Result) Mappings() int {
	return r.Store.Len()
}

// Engine matches file diffs.
type Engine struct {
	Options matching.Options

	// Workers bounds MatchAll concurrency. Zero means runtime.NumCPU.
	Workers int

	// Tracer is used for per-file spans. When nil, falls back to otel.Tracer("astmatch").
	Tracer trace.Tracer

	// Metrics is optional.
	Metrics *observability.MatchMetrics
}

// New creates an engine with the given matcher options.
func New(opts matching.Options) *Engine {
	return &Engine{Options: opts}
}

func (e *Engine) tracer() trace.Tracer {
	if e.Tracer != nil {
		return e.Tracer
	}

	return otel.Tracer(tracerName)
}

func (e *Engine) logger() *slog.Logger {
	if e.Options.Logger != nil {
		return e.Options.Logger
	}

	return slog.Default()
}

func (e *Engine) workers() int {
	if e.Workers > 0 {
		return e.Workers
	}

	return runtime.NumCPU()
}

// MatchFile runs every fact of diff, in order, against one shared store and
// one shared optimization context. Invalid facts are logged and skipped;
// unresolved locations inside valid facts degrade to missing mappings.
func (e *Engine) MatchFile(ctx context.Context, diff FileDiff) (*Result, error) {
	if diff.Src == nil || diff.Dst == nil {
		return nil, fmt.Errorf("%w: %s -> %s", ErrMissingTree, diff.SrcPath, diff.DstPath)
	}

	ctx, span := e.tracer().Start(ctx, "astmatch.file",
		trace.WithAttributes(
			attribute.String("file.src", diff.SrcPath),
			attribute.String("file.dst", diff.DstPath),
			attribute.Int("file.facts", len(diff.Facts)),
		))
	defer span.End()

	start := time.Now()
	logger := e.logger()

	res := &Result{
		SrcPath: diff.SrcPath,
		DstPath: diff.DstPath,
		Store:   mapping.NewStore(diff.Src, diff.Dst),
		PerKind: make(map[model.Kind]int),
	}

	optCtx := matching.NewOptimizationContext()

	for i, fact := range diff.Facts {
		if err := fact.Validate(); err != nil {
			logger.WarnContext(ctx, "skipping fact", "index", i, "file", diff.SrcPath, "error", err)

			res.Skipped++

			if e.Metrics != nil {
				e.Metrics.RecordSkipped(ctx, string(fact.Kind))
			}

			continue
		}

		before := res.Store.Len()
		e.matcherFor(optCtx, fact).Match(diff.Src.Root(), diff.Dst.Root(), res.Store)
		added := res.Store.Len() - before

		res.Facts++
		res.PerKind[fact.Kind] += added

		if e.Metrics != nil {
			e.Metrics.RecordFact(ctx, string(fact.Kind), added)
		}
	}

	res.Duration = time.Since(start)
	res.Stats = res.Store.Stats()

	if e.Metrics != nil {
		e.Metrics.RecordFile(ctx, res.Duration)
	}

	span.SetAttributes(
		attribute.Int("file.mappings", res.Store.Len()),
		attribute.Int("file.skipped", res.Skipped),
		attribute.Int("file.unmapped_src", res.Stats.UnmappedSrc),
	)

	logger.DebugContext(ctx, "file matched",
		"src", diff.SrcPath, "dst", diff.DstPath,
		"mappings", res.Store.Len(), "skipped", res.Skipped, "duration", res.Duration)

	return res, nil
}

// matcherFor picks the matcher variant for a validated fact.
func (e *Engine) matcherFor(optCtx *matching.OptimizationContext, fact model.Fact) matching.Matcher {
	switch fact.Kind {
	case model.KindJavadoc:
		return matching.NewJavadocMatcher(fact.Javadoc, e.Options)
	case model.KindAnonymousClass:
		return matching.NewAnonymousClassMatcher(optCtx, fact.AnonymousClass, e.Options)
	case model.KindOperationBody:
		return matching.NewMethodBodyMatcher(optCtx, fact.OperationBody, e.Options)
	case model.KindComments:
		return matching.NewCommentMatcher(fact.Comments, e.Options)
	}

	// Unreachable after Validate.
	panic(fmt.Sprintf("engine: no matcher for fact kind %q", fact.Kind))
}

// MatchAll matches independent file diffs on a bounded worker group and
// returns the results in input order. Cancellation is observed between
// files only; a file that started matching always completes.
func (e *Engine) MatchAll(ctx context.Context, diffs []FileDiff) ([]*Result, error) {
	ctx, span := e.tracer().Start(ctx, "astmatch.batch",
		trace.WithAttributes(attribute.Int("batch.files", len(diffs))))
	defer span.End()

	results := make([]*Result, len(diffs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())

	for i, diff := range diffs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("file %s: %w", diff.SrcPath, err)
			}

			res, err := e.MatchFile(gctx, diff)
			if err != nil {
				return err
			}

			results[i] = res

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	return results, nil
}
