package memory

import (
	"context"
	"log/slog"
	"sort"

	"github.com/mapmem/mapmem-go/internal/catalog"
)

// DefaultStaleFraction is the stale-candidate ratio above which one
// validation call reports schema drift.
const DefaultStaleFraction = 0.5

// ValidationResult carries the surviving candidates plus the drift notice.
// SchemaDrift is a signal that the target schema has evolved, never an
// error.
type ValidationResult struct {
	Columns     map[string]ColumnResult
	SchemaDrift bool
	StaleCount  int
}

// Validator filters aggregated candidates against the live schema catalog.
type Validator struct {
	catalog       catalog.Catalog
	staleFraction float64
	logger        *slog.Logger
}

// NewValidator creates a validator. staleFraction <= 0 selects the default.
func NewValidator(cat catalog.Catalog, staleFraction float64, logger *slog.Logger) *Validator {
	if staleFraction <= 0 {
		staleFraction = DefaultStaleFraction
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{catalog: cat, staleFraction: staleFraction, logger: logger}
}

// Validate drops candidates whose target field no longer exists on the
// table. Stale candidates are logged and counted, never surfaced as errors;
// columns left without any candidate disappear from the result entirely so
// the gate yields NoOpinion for them. Confidences are renormalized over the
// surviving weights.
//
// A catalog lookup failure keeps the candidate: an unreachable catalog must
// not erase learned knowledge.
func (v *Validator) Validate(ctx context.Context, targetTable string, columns map[string]ColumnResult) ValidationResult {
	result := ValidationResult{Columns: make(map[string]ColumnResult, len(columns))}
	if v.catalog == nil {
		result.Columns = columns
		return result
	}

	totalCandidates := 0

	// Deterministic iteration keeps logs and catalog call order stable.
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cr := columns[name]
		surviving := make([]FieldCandidate, 0, len(cr.Candidates))
		for _, cand := range cr.Candidates {
			totalCandidates++
			exists, err := v.catalog.ColumnExists(ctx, targetTable, cand.Field)
			if err != nil {
				v.logger.Warn("catalog lookup failed, keeping candidate",
					"table", targetTable, "field", cand.Field, "error", err)
				surviving = append(surviving, cand)
				continue
			}
			if !exists {
				result.StaleCount++
				v.logger.Info("stale mapping filtered",
					"column", name, "field", cand.Field, "table", targetTable)
				continue
			}
			surviving = append(surviving, cand)
		}

		if len(surviving) == 0 {
			continue
		}
		renormalize(surviving)
		result.Columns[name] = ColumnResult{Column: name, Candidates: surviving}
	}

	if totalCandidates > 0 {
		staleRatio := float64(result.StaleCount) / float64(totalCandidates)
		if staleRatio > v.staleFraction {
			result.SchemaDrift = true
			v.logger.Warn("schema drift detected",
				"table", targetTable, "stale", result.StaleCount, "total", totalCandidates)
		}
	}

	return result
}
