package memory

import (
	"sort"
	"time"

	"github.com/mapmem/mapmem-go/internal/models"
)

// FieldCandidate is one target field competing for a source column, with its
// accumulated vote weight and per-column normalized confidence.
type FieldCandidate struct {
	Field      string
	Weight     float64
	Confidence float64
	LastSeen   time.Time
	EpisodeIDs []string
}

// ColumnResult holds the ranked candidates for one source column. The winner
// is always Candidates[0].
type ColumnResult struct {
	Column     string
	Candidates []FieldCandidate
}

// Winner returns the highest-ranked candidate.
func (cr ColumnResult) Winner() (FieldCandidate, bool) {
	if len(cr.Candidates) == 0 {
		return FieldCandidate{}, false
	}
	return cr.Candidates[0], true
}

// Aggregate converts a ranked episode list into per-column candidate votes.
//
// Episodes with success=false contribute zero weight regardless of their
// similarity: a failed application of a mapping is not a positive signal.
// For every (column, field) pair in a surviving episode's mappings the
// episode's retrieval score is added to that candidate's weight. Confidence
// is normalized per column: winning weight over the column's total weight.
//
// Ties break deterministically: the candidate supported by the more recent
// episode wins, then the lexicographically smaller field name.
func Aggregate(scored []ScoredEpisode) map[string]ColumnResult {
	votes := models.MappingVote{}

	for _, se := range scored {
		if !se.Episode.Success {
			continue
		}
		if se.Score <= 0 {
			continue
		}
		for column, field := range se.Episode.ColumnMappings {
			byField, ok := votes[column]
			if !ok {
				byField = make(map[string]*models.FieldVote)
				votes[column] = byField
			}
			fv, ok := byField[field]
			if !ok {
				fv = &models.FieldVote{}
				byField[field] = fv
			}
			fv.Weight += se.Score
			if se.Episode.CreatedAt.After(fv.LastSeen) {
				fv.LastSeen = se.Episode.CreatedAt
			}
			fv.EpisodeIDs = append(fv.EpisodeIDs, se.Episode.ID)
		}
	}

	results := make(map[string]ColumnResult, len(votes))
	for column, byField := range votes {
		var total float64
		candidates := make([]FieldCandidate, 0, len(byField))
		for field, fv := range byField {
			total += fv.Weight
			ids := append([]string(nil), fv.EpisodeIDs...)
			sort.Strings(ids)
			candidates = append(candidates, FieldCandidate{
				Field:      field,
				Weight:     fv.Weight,
				LastSeen:   fv.LastSeen,
				EpisodeIDs: ids,
			})
		}

		rankCandidates(candidates)
		if total > 0 {
			for i := range candidates {
				candidates[i].Confidence = candidates[i].Weight / total
			}
		}

		results[column] = ColumnResult{Column: column, Candidates: candidates}
	}

	return results
}

// rankCandidates orders candidates by weight descending, breaking ties by
// recency then lexicographic field name. The order is reproducible for any
// input ordering.
func rankCandidates(candidates []FieldCandidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Weight != candidates[j].Weight {
			return candidates[i].Weight > candidates[j].Weight
		}
		if !candidates[i].LastSeen.Equal(candidates[j].LastSeen) {
			return candidates[i].LastSeen.After(candidates[j].LastSeen)
		}
		return candidates[i].Field < candidates[j].Field
	})
}

// renormalize recomputes confidences after candidates were filtered out.
func renormalize(candidates []FieldCandidate) {
	var total float64
	for _, c := range candidates {
		total += c.Weight
	}
	if total == 0 {
		return
	}
	for i := range candidates {
		candidates[i].Confidence = candidates[i].Weight / total
	}
}
