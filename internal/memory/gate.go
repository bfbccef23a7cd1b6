package memory

import "github.com/mapmem/mapmem-go/internal/models"

// DefaultAutoApplyThreshold is the minimum aggregated confidence required to
// act without human confirmation.
const DefaultAutoApplyThreshold = 0.85

// DecisionKind classifies what the caller may do with a column.
type DecisionKind string

const (
	// DecisionAutoApply means confidence cleared the threshold; the caller
	// may act autonomously.
	DecisionAutoApply DecisionKind = "auto_apply"

	// DecisionAskUser means candidates exist but none is confident enough;
	// the caller must escalate to a human.
	DecisionAskUser DecisionKind = "ask_user"

	// DecisionNoOpinion means no historical candidate survived for this
	// column.
	DecisionNoOpinion DecisionKind = "no_opinion"
)

// Decision is the gate's verdict for a single column.
type Decision struct {
	Column     string             `json:"column"`
	Kind       DecisionKind       `json:"kind"`
	Field      string             `json:"field,omitempty"`
	Confidence float64            `json:"confidence,omitempty"`
	Candidates []models.Candidate `json:"candidates,omitempty"`
}

// Gate applies the threshold policy that separates autonomous action from
// human escalation.
type Gate struct {
	Threshold float64
}

// NewGate creates a gate; threshold <= 0 selects the default.
func NewGate(threshold float64) Gate {
	if threshold <= 0 {
		threshold = DefaultAutoApplyThreshold
	}
	return Gate{Threshold: threshold}
}

// Decide produces a verdict for every queried column. Columns absent from
// the validated results yield NoOpinion; low confidence routes to AskUser
// with the ranked candidates for a human-facing prompt. Escalation is an
// expected outcome, not an error.
func (g Gate) Decide(validated map[string]ColumnResult, queriedColumns []string) map[string]Decision {
	decisions := make(map[string]Decision, len(queriedColumns))

	decideOne := func(column string) Decision {
		cr, ok := validated[column]
		if !ok {
			return Decision{Column: column, Kind: DecisionNoOpinion}
		}
		winner, ok := cr.Winner()
		if !ok {
			return Decision{Column: column, Kind: DecisionNoOpinion}
		}

		candidates := make([]models.Candidate, 0, len(cr.Candidates))
		for _, c := range cr.Candidates {
			candidates = append(candidates, models.Candidate{Field: c.Field, Confidence: c.Confidence})
		}

		if winner.Confidence >= g.Threshold {
			return Decision{
				Column:     column,
				Kind:       DecisionAutoApply,
				Field:      winner.Field,
				Confidence: winner.Confidence,
				Candidates: candidates,
			}
		}
		return Decision{
			Column:     column,
			Kind:       DecisionAskUser,
			Field:      winner.Field,
			Confidence: winner.Confidence,
			Candidates: candidates,
		}
	}

	if len(queriedColumns) > 0 {
		for _, column := range queriedColumns {
			decisions[column] = decideOne(column)
		}
		return decisions
	}

	for column := range validated {
		decisions[column] = decideOne(column)
	}
	return decisions
}
