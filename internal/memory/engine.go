package memory

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mapmem/mapmem-go/internal/db"
	"github.com/mapmem/mapmem-go/internal/metrics"
	"github.com/mapmem/mapmem-go/internal/models"
)

// Suggestion sources, surfaced to callers so they can tell recent votes from
// consolidated patterns.
const (
	SourceMemory     = "memory"
	SourceReflection = "reflection"
)

// Options tunes the engine. Zero values select the documented defaults.
type Options struct {
	TopK               int
	SignatureBoost     float64
	AutoApplyThreshold float64
	StaleFraction      float64
}

// Engine wires the recall chain (retrieve, aggregate, validate, gate) and
// the learn path (episode append) behind one facade.
type Engine struct {
	store     EventStore
	retriever *Retriever
	validator *Validator
	gate      Gate
	embedder  Embedder
	topK      int
	logger    *slog.Logger
	collector *metrics.Collector
}

// NewEngine assembles an engine. embedder and collector may be nil; the
// validator's catalog may be nil, which disables stale filtering.
func NewEngine(
	store EventStore,
	embedder Embedder,
	validator *Validator,
	opts Options,
	logger *slog.Logger,
	collector *metrics.Collector,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Engine{
		store:     store,
		retriever: NewRetriever(store, embedder, opts.SignatureBoost, logger),
		validator: validator,
		gate:      NewGate(opts.AutoApplyThreshold),
		embedder:  embedder,
		topK:      topK,
		logger:    logger,
		collector: collector,
	}
}

// RecallRequest describes the file a caller is about to import.
type RecallRequest struct {
	Namespace   string
	ActorID     string
	Filename    string
	Columns     []string
	Sheets      models.SheetMetadata
	TargetTable string
}

// RecallResult is the engine's answer to "what do we already know".
type RecallResult struct {
	Suggestions map[string]models.ColumnSuggestion `json:"suggestions"`
	Decisions   map[string]Decision                `json:"decisions"`
	SchemaDrift bool                               `json:"schema_drift"`

	// Degraded is set when the store was unreachable and the result is
	// intentionally empty.
	Degraded bool `json:"degraded,omitempty"`
}

// Recall runs retrieve, aggregate, validate, gate and returns per-column
// suggestions. A storage outage degrades to an empty result instead of an
// error: memory is an enhancement, not a dependency of the caller's
// workflow.
func (e *Engine) Recall(ctx context.Context, req RecallRequest) (*RecallResult, error) {
	start := time.Now()
	defer e.record(metrics.OpRetrieve, start)

	qc := QueryContext{
		Description:   DescribeColumns(req.TargetTable, req.Columns),
		FileSignature: FileSignature(req.Columns),
		TargetTable:   req.TargetTable,
	}

	scored, err := e.retriever.Retrieve(ctx, req.Namespace, qc, e.topK)
	if err != nil {
		if errors.Is(err, db.ErrStorageUnavailable) {
			e.logger.Warn("event store unavailable, recalling nothing",
				"namespace", req.Namespace, "error", err)
			return &RecallResult{
				Suggestions: map[string]models.ColumnSuggestion{},
				Decisions:   e.gate.Decide(nil, req.Columns),
				Degraded:    true,
			}, nil
		}
		return nil, err
	}

	columns := Aggregate(scored)

	var validated ValidationResult
	if e.validator != nil {
		validated = e.validator.Validate(ctx, req.TargetTable, columns)
	} else {
		validated = ValidationResult{Columns: columns}
	}

	decisions := e.gate.Decide(validated.Columns, req.Columns)

	reflected := e.reflectionMappings(ctx, req.Namespace, qc)

	suggestions := make(map[string]models.ColumnSuggestion)
	for column, d := range decisions {
		if d.Kind == DecisionNoOpinion {
			continue
		}
		source := SourceMemory
		if reflected[column] == d.Field {
			source = SourceReflection
		}
		suggestions[column] = models.ColumnSuggestion{
			Column:     column,
			Field:      d.Field,
			Confidence: d.Confidence,
			Source:     source,
			Candidates: d.Candidates,
		}
	}

	e.logger.Info("recall complete",
		"namespace", req.Namespace,
		"target_table", req.TargetTable,
		"episodes_scored", len(scored),
		"suggestions", len(suggestions),
		"schema_drift", validated.SchemaDrift,
	)

	return &RecallResult{
		Suggestions: suggestions,
		Decisions:   decisions,
		SchemaDrift: validated.SchemaDrift,
	}, nil
}

// reflectionMappings returns the consolidated column -> field pattern for
// the query's exact cluster, or nil. Stale reflections (older schema than
// the live catalog) are ignored until reconsolidation revalidates them.
func (e *Engine) reflectionMappings(ctx context.Context, namespace string, qc QueryContext) map[string]string {
	reflections, err := e.store.QueryReflections(ctx, namespace, qc.TargetTable, 20)
	if err != nil {
		e.logger.Warn("reflection lookup failed", "namespace", namespace, "error", err)
		return nil
	}

	currentVersion := e.currentSchemaVersion(ctx, qc.TargetTable)
	for _, r := range reflections {
		if r.FileSignature != qc.FileSignature {
			continue
		}
		if r.Stale(currentVersion) {
			e.logger.Info("reflection stale, skipping",
				"cluster", r.ClusterKey, "observed", r.SchemaVersionObserved, "current", currentVersion)
			continue
		}
		return ParsePattern(r.PatternText)
	}
	return nil
}

func (e *Engine) currentSchemaVersion(ctx context.Context, table string) string {
	if e.validator == nil || e.validator.catalog == nil {
		return ""
	}
	version, err := e.validator.catalog.SchemaVersion(ctx, table)
	if err != nil {
		e.logger.Warn("schema version lookup failed", "table", table, "error", err)
		return ""
	}
	return version
}

// LearnRequest records how an interaction resolved.
type LearnRequest struct {
	Namespace       string
	ActorID         string
	Filename        string
	Columns         []string
	Sheets          models.SheetMetadata
	ColumnMappings  map[string]string
	UserCorrections map[string]string
	Success         bool
	MatchRate       float64
	SchemaVersion   string
	TargetTable     string
}

// Learn appends a new immutable episode. It is the only write path of the
// recall/learn loop; corrections arrive as fresh episodes, never as updates.
func (e *Engine) Learn(ctx context.Context, req LearnRequest) (*models.Episode, error) {
	start := time.Now()
	defer e.record(metrics.OpAppend, start)

	description := DescribeColumns(req.TargetTable, req.Columns)

	var embeddingVec []float32
	if e.embedder != nil {
		vec, err := e.embedder.Embed(ctx, description)
		if err != nil {
			// An episode without an embedding is still retrievable via
			// token overlap.
			e.logger.Warn("episode embedding failed", "error", err)
		} else {
			embeddingVec = vec
		}
	}

	ep, err := e.store.AppendEpisode(ctx, models.EpisodeInput{
		Namespace:       req.Namespace,
		ActorID:         req.ActorID,
		FilenamePattern: NormalizeFilename(req.Filename),
		FileSignature:   FileSignature(req.Columns),
		SheetMetadata:   req.Sheets,
		ColumnMappings:  req.ColumnMappings,
		UserCorrections: req.UserCorrections,
		Success:         req.Success,
		MatchRate:       req.MatchRate,
		SchemaVersion:   req.SchemaVersion,
		TargetTable:     req.TargetTable,
		Description:     description,
		Embedding:       embeddingVec,
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("episode learned",
		"namespace", req.Namespace, "episode", ep.ID,
		"target_table", req.TargetTable, "success", req.Success)
	return ep, nil
}

func (e *Engine) record(op string, start time.Time) {
	if e.collector != nil {
		e.collector.RecordTiming(op, time.Since(start))
	}
}
