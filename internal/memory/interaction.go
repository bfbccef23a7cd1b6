package memory

import (
	"context"
	"fmt"
)

// State names of the recall-before-ask protocol.
type State string

const (
	StateNotAsked       State = "NOT_ASKED"
	StateRecalling      State = "RECALLING"
	StateAutoApplied    State = "AUTO_APPLIED"
	StateAwaitingAnswer State = "AWAITING_ANSWER"
	StateAnswered       State = "ANSWERED"
	StateLearned        State = "LEARNED"
)

// Interaction tracks one caller decision through the recall-before-ask
// protocol:
//
//	NOT_ASKED -> RECALLING -> {AUTO_APPLIED | AWAITING_ANSWER}
//	AWAITING_ANSWER -> ANSWERED -> LEARNED
//
// AUTO_APPLIED is terminal without further engine I/O. An interaction that
// reaches ANSWERED but never LEARNED is a correctness defect (silent
// non-learning); Unlearned exposes it so callers can assert against it.
// The engine itself never blocks on the human: AWAITING_ANSWER suspends the
// caller's workflow, and Answer resumes it.
type Interaction struct {
	engine  *Engine
	state   State
	recall  RecallRequest
	result  *RecallResult
	answers map[string]string
}

// Begin starts a new interaction in NOT_ASKED.
func (e *Engine) Begin(req RecallRequest) *Interaction {
	return &Interaction{engine: e, state: StateNotAsked, recall: req}
}

// State returns the current protocol state.
func (it *Interaction) State() State {
	return it.state
}

// Result returns the recall result, nil before Recall ran.
func (it *Interaction) Result() *RecallResult {
	return it.result
}

// Recall runs the retrieve/aggregate/validate/gate chain. If every queried
// column auto-applies the interaction terminates in AUTO_APPLIED; otherwise
// it suspends in AWAITING_ANSWER until the caller supplies an answer.
func (it *Interaction) Recall(ctx context.Context) (*RecallResult, error) {
	if it.state != StateNotAsked {
		return nil, fmt.Errorf("recall: invalid transition from %s", it.state)
	}
	it.state = StateRecalling

	result, err := it.engine.Recall(ctx, it.recall)
	if err != nil {
		// A failed recall leaves the caller where a miss would: asking.
		it.state = StateAwaitingAnswer
		return nil, err
	}
	it.result = result

	if it.allAutoApplied(result) {
		it.state = StateAutoApplied
	} else {
		it.state = StateAwaitingAnswer
	}
	return result, nil
}

// allAutoApplied reports whether every queried column cleared the gate.
func (it *Interaction) allAutoApplied(result *RecallResult) bool {
	if len(it.recall.Columns) == 0 || len(result.Decisions) == 0 {
		return false
	}
	for _, column := range it.recall.Columns {
		d, ok := result.Decisions[column]
		if !ok || d.Kind != DecisionAutoApply {
			return false
		}
	}
	return true
}

// Answer records the human-supplied mappings for the columns the gate
// escalated. Only valid from AWAITING_ANSWER.
func (it *Interaction) Answer(answers map[string]string) error {
	if it.state != StateAwaitingAnswer {
		return fmt.Errorf("answer: invalid transition from %s", it.state)
	}
	if len(answers) == 0 {
		return fmt.Errorf("answer: at least one mapping is required")
	}
	it.answers = answers
	it.state = StateAnswered
	return nil
}

// Outcome carries the downstream import result the learned episode records.
type Outcome struct {
	Success       bool
	MatchRate     float64
	SchemaVersion string
}

// Learn writes the resolved interaction back as a new episode, completing
// the loop. The episode's mappings merge the auto-applied fields with the
// human answers; the answers alone are recorded as user corrections.
func (it *Interaction) Learn(ctx context.Context, outcome Outcome) error {
	if it.state != StateAnswered {
		return fmt.Errorf("learn: invalid transition from %s", it.state)
	}

	mappings := make(map[string]string)
	if it.result != nil {
		for column, d := range it.result.Decisions {
			if d.Kind == DecisionAutoApply {
				mappings[column] = d.Field
			}
		}
	}
	for column, field := range it.answers {
		mappings[column] = field
	}

	_, err := it.engine.Learn(ctx, LearnRequest{
		Namespace:       it.recall.Namespace,
		ActorID:         it.recall.ActorID,
		Filename:        it.recall.Filename,
		Columns:         it.recall.Columns,
		Sheets:          it.recall.Sheets,
		ColumnMappings:  mappings,
		UserCorrections: it.answers,
		Success:         outcome.Success,
		MatchRate:       outcome.MatchRate,
		SchemaVersion:   outcome.SchemaVersion,
		TargetTable:     it.recall.TargetTable,
	})
	if err != nil {
		return err
	}

	it.state = StateLearned
	return nil
}

// Unlearned reports whether the interaction collected an answer that was
// never written back. A true value after the interaction ends means the
// system silently failed to learn.
func (it *Interaction) Unlearned() bool {
	return it.state == StateAnswered
}
