package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aescanero/dagoc/internal/application/analyzer"
	"github.com/aescanero/dagoc/internal/application/cachekey"
	"github.com/aescanero/dagoc/internal/application/graphspec"
	"github.com/aescanero/dagoc/internal/application/workers"
	"github.com/aescanero/dagoc/pkg/domain"
	"github.com/aescanero/dagoc/pkg/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventsTopic is the topic compilation events are published on.
const EventsTopic = "bundle.events"

// Compilation results recorded in metrics.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// Result is the outcome of compiling one graph.
type Result struct {
	Bundle *domain.Bundle
	// Data is the encoded bundle as stored in the cache.
	Data     []byte
	CacheHit bool
	Warnings []*domain.ParseWarning
}

// Compiler compiles graphs into cached bundles.
type Compiler struct {
	builder  *graphspec.Builder
	store    ports.BundleStore
	codec    ports.BundleCodec
	eventBus ports.EventBus
	metrics  ports.MetricsCollector
	logger   *zap.Logger
	pool     *workers.Pool

	now func() time.Time
}

// NewCompiler creates a new compiler. eventBus may be nil when events are
// disabled.
func NewCompiler(
	builder *graphspec.Builder,
	store ports.BundleStore,
	codec ports.BundleCodec,
	eventBus ports.EventBus,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
) *Compiler {
	return &Compiler{
		builder:  builder,
		store:    store,
		codec:    codec,
		eventBus: eventBus,
		metrics:  metrics,
		logger:   logger,
		pool:     workers.NewPool(1, logger),
		now:      time.Now,
	}
}

// PoolStatus samples the compile worker pool.
func (c *Compiler) PoolStatus() *workers.HealthStatus {
	return c.pool.Status()
}

// SetConcurrency sets how many graphs CompileAll compiles at once.
func (c *Compiler) SetConcurrency(n int) {
	c.pool = workers.NewPool(n, c.logger)
}

// Codec returns the bundle encoding in use.
func (c *Compiler) Codec() ports.BundleCodec {
	return c.codec
}

// Compile builds graph name from rows and returns its bundle, reusing the
// cached one when the structural hash matches.
func (c *Compiler) Compile(ctx context.Context, rows []graphspec.Row, name string) (*Result, error) {
	start := time.Now()

	spec, warnings, err := c.builder.BuildGraph(rows, name)
	if err != nil {
		c.metrics.RecordCompilation(ResultError, time.Since(start))
		return nil, fmt.Errorf("failed to build graph %s: %w", name, err)
	}

	return c.compileSpec(ctx, spec, warnings, start)
}

// CompileAll compiles every graph defined by rows. No bundle is produced
// unless every graph builds.
func (c *Compiler) CompileAll(ctx context.Context, rows []graphspec.Row) ([]*Result, error) {
	start := time.Now()

	built, err := c.builder.Build(rows)
	if err != nil {
		c.metrics.RecordCompilation(ResultError, time.Since(start))
		return nil, fmt.Errorf("failed to build graphs: %w", err)
	}

	warningsByGraph := make(map[string][]*domain.ParseWarning)
	for _, w := range built.Warnings {
		warningsByGraph[w.Graph] = append(warningsByGraph[w.Graph], w)
	}

	results := make([]*Result, len(built.Order))
	err = c.pool.Run(ctx, len(built.Order), func(ctx context.Context, i int) error {
		name := built.Order[i]
		result, err := c.compileSpec(ctx, built.Graphs[name], warningsByGraph[name], time.Now())
		if err != nil {
			return err
		}
		results[i] = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Compiler) compileSpec(ctx context.Context, spec *domain.GraphSpec, warnings []*domain.ParseWarning, start time.Time) (*Result, error) {
	c.metrics.RecordParseWarnings(spec.Name, len(warnings))
	hash := cachekey.Compute(spec)

	if bundle, data, ok := c.lookup(ctx, spec.Name, hash); ok {
		c.metrics.RecordCompilation(ResultHit, time.Since(start))
		c.publish(ctx, domain.EventTypeBundleCacheHit, spec.Name, hash, nil)
		c.logger.Info("bundle cache hit",
			zap.String("graph", spec.Name),
			zap.String("hash", hash))
		return &Result{Bundle: bundle, Data: data, CacheHit: true, Warnings: warnings}, nil
	}

	bundle := &domain.Bundle{
		Format:    domain.BundleFormat,
		CreatedAt: c.now().UTC(),
		Graph:     spec,
		Analysis:  analyzer.Analyze(spec),
		Hash:      hash,
	}

	data, err := c.codec.Encode(bundle)
	if err != nil {
		c.metrics.RecordCompilation(ResultError, time.Since(start))
		return nil, fmt.Errorf("failed to encode bundle for graph %s: %w", spec.Name, err)
	}

	if err := c.store.Put(ctx, hash, data); err != nil {
		c.metrics.RecordCompilation(ResultError, time.Since(start))
		c.logger.Error("failed to store bundle",
			zap.String("graph", spec.Name),
			zap.String("hash", hash),
			zap.Error(err))
		return nil, fmt.Errorf("failed to store bundle: %w", err)
	}

	c.metrics.RecordCompilation(ResultMiss, time.Since(start))
	c.publish(ctx, domain.EventTypeBundleCompiled, spec.Name, hash, map[string]interface{}{
		"nodes":           len(spec.Nodes),
		"max_parallelism": bundle.Analysis.MaxParallelism,
		"is_dag":          bundle.Analysis.IsDAG,
		"warnings":        len(warnings),
	})
	c.logger.Info("bundle compiled",
		zap.String("graph", spec.Name),
		zap.String("hash", hash),
		zap.Int("nodes", len(spec.Nodes)),
		zap.Int("max_parallelism", bundle.Analysis.MaxParallelism),
		zap.Bool("is_dag", bundle.Analysis.IsDAG),
		zap.Duration("duration", time.Since(start)))

	return &Result{Bundle: bundle, Data: data, Warnings: warnings}, nil
}

// lookup returns the cached bundle for hash if it decodes and is consistent.
// Unusable entries are logged, counted and reported as a miss.
func (c *Compiler) lookup(ctx context.Context, graph, hash string) (*domain.Bundle, []byte, bool) {
	data, err := c.store.Get(ctx, hash)
	if err != nil {
		if !errors.Is(err, domain.ErrBundleNotFound) {
			c.logger.Warn("bundle cache unavailable, recompiling",
				zap.String("graph", graph),
				zap.String("hash", hash),
				zap.Error(err))
		}
		return nil, nil, false
	}

	bundle, err := c.codec.Decode(data)
	if err != nil {
		c.invalidated(ctx, graph, hash, "decode_error", err)
		return nil, nil, false
	}
	if err := cachekey.Verify(bundle); err != nil {
		c.invalidated(ctx, graph, hash, "hash_mismatch", err)
		return nil, nil, false
	}
	if bundle.Graph.Name != graph {
		c.invalidated(ctx, graph, hash, "graph_mismatch", fmt.Errorf("cached bundle is for graph %s", bundle.Graph.Name))
		return nil, nil, false
	}
	if err := c.verifyAnalysis(bundle); err != nil {
		c.invalidated(ctx, graph, hash, "analysis_mismatch", err)
		return nil, nil, false
	}

	return bundle, data, true
}

// verifyAnalysis checks the cached analysis against one derived from the
// cached graph. Both sides go through the codec so representation details
// such as nil versus empty lists do not count as differences.
func (c *Compiler) verifyAnalysis(bundle *domain.Bundle) error {
	fresh := *bundle
	fresh.Analysis = analyzer.Analyze(bundle.Graph)

	want, err := c.codec.Encode(&fresh)
	if err != nil {
		return fmt.Errorf("failed to encode derived analysis: %w", err)
	}
	got, err := c.codec.Encode(bundle)
	if err != nil {
		return fmt.Errorf("failed to encode cached analysis: %w", err)
	}
	if !bytes.Equal(want, got) {
		return fmt.Errorf("cached analysis differs from analysis of graph %s", bundle.Graph.Name)
	}
	return nil
}

func (c *Compiler) invalidated(ctx context.Context, graph, hash, reason string, err error) {
	c.metrics.RecordCacheInvalidation(reason)
	c.publish(ctx, domain.EventTypeBundleInvalidated, graph, hash, map[string]interface{}{
		"reason": reason,
	})
	c.logger.Warn("cached bundle discarded, recompiling",
		zap.String("graph", graph),
		zap.String("hash", hash),
		zap.String("reason", reason),
		zap.Error(err))
}

// Validate returns the validation report for graph name.
func (c *Compiler) Validate(rows []graphspec.Row, name string) *domain.ValidationReport {
	report := c.builder.Validate(rows, name)
	c.metrics.RecordValidation(report.Valid, len(report.Errors), len(report.Warnings))
	return report
}

// Bundle returns the stored bundle for hash.
func (c *Compiler) Bundle(ctx context.Context, hash string) (*domain.Bundle, []byte, error) {
	data, err := c.store.Get(ctx, hash)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get bundle: %w", err)
	}
	bundle, err := c.codec.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode bundle %s: %w", hash, err)
	}
	if err := cachekey.Verify(bundle); err != nil {
		return nil, nil, err
	}
	return bundle, data, nil
}

// Invalidate removes the bundle stored under hash.
func (c *Compiler) Invalidate(ctx context.Context, hash string) error {
	if err := c.store.Delete(ctx, hash); err != nil {
		return fmt.Errorf("failed to invalidate bundle: %w", err)
	}
	c.metrics.RecordCacheInvalidation("manual")
	c.publish(ctx, domain.EventTypeBundleInvalidated, "", hash, map[string]interface{}{
		"reason": "manual",
	})
	c.logger.Info("bundle invalidated", zap.String("hash", hash))
	return nil
}

// Bundles lists the hashes of every cached bundle.
func (c *Compiler) Bundles(ctx context.Context) ([]string, error) {
	hashes, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bundles: %w", err)
	}
	return hashes, nil
}

// publish sends an event if an event bus is configured. Failures are logged
// and never fail the compilation.
func (c *Compiler) publish(ctx context.Context, eventType domain.EventType, graph, hash string, data map[string]interface{}) {
	if c.eventBus == nil {
		return
	}

	event := domain.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		GraphName: graph,
		Hash:      hash,
		Timestamp: c.now().UTC(),
		Data:      data,
	}

	if err := c.eventBus.Publish(ctx, EventsTopic, event); err != nil {
		c.logger.Error("failed to publish event",
			zap.String("type", string(eventType)),
			zap.String("graph", graph),
			zap.Error(err))
	}
}
