package memory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapmem/mapmem-go/internal/memory"
	"github.com/mapmem/mapmem-go/internal/models"
)

func scoredEpisode(id string, success bool, score float64, createdAt time.Time, mappings map[string]string) memory.ScoredEpisode {
	return memory.ScoredEpisode{
		Episode: models.Episode{
			ID:             id,
			Success:        success,
			ColumnMappings: mappings,
			CreatedAt:      createdAt,
		},
		Score: score,
	}
}

func TestAggregate(t *testing.T) {
	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	t.Run("failed episodes contribute zero weight", func(t *testing.T) {
		// Three successful votes for product_sku at 0.8 each, one highly
		// similar but failed vote for item_code. The failure must not dilute
		// confidence: 2.4 / 2.4 = 1.0.
		scored := []memory.ScoredEpisode{
			scoredEpisode("ep-1", true, 0.8, base, map[string]string{"SKU": "product_sku"}),
			scoredEpisode("ep-2", true, 0.8, base.Add(time.Hour), map[string]string{"SKU": "product_sku"}),
			scoredEpisode("ep-3", true, 0.8, base.Add(2*time.Hour), map[string]string{"SKU": "product_sku"}),
			scoredEpisode("ep-4", false, 0.95, base.Add(3*time.Hour), map[string]string{"SKU": "item_code"}),
		}

		results := memory.Aggregate(scored)
		require.Contains(t, results, "SKU")

		winner, ok := results["SKU"].Winner()
		require.True(t, ok)
		assert.Equal(t, "product_sku", winner.Field)
		assert.InDelta(t, 1.0, winner.Confidence, 1e-9)
		assert.InDelta(t, 2.4, winner.Weight, 1e-9)

		// The failed candidate never appears.
		for _, cand := range results["SKU"].Candidates {
			assert.NotEqual(t, "item_code", cand.Field)
		}
	})

	t.Run("split vote yields half confidence", func(t *testing.T) {
		scored := []memory.ScoredEpisode{
			scoredEpisode("ep-1", true, 0.8, base, map[string]string{"Qty": "quantity"}),
			scoredEpisode("ep-2", true, 0.8, base.Add(time.Hour), map[string]string{"Qty": "qty_on_hand"}),
		}

		results := memory.Aggregate(scored)
		winner, ok := results["Qty"].Winner()
		require.True(t, ok)
		assert.InDelta(t, 0.5, winner.Confidence, 1e-9)

		// Recency breaks the tie: ep-2 is newer.
		assert.Equal(t, "qty_on_hand", winner.Field)
	})

	t.Run("lexicographic tie break when recency equal", func(t *testing.T) {
		scored := []memory.ScoredEpisode{
			scoredEpisode("ep-1", true, 0.5, base, map[string]string{"Qty": "b_field"}),
			scoredEpisode("ep-2", true, 0.5, base, map[string]string{"Qty": "a_field"}),
		}

		results := memory.Aggregate(scored)
		winner, ok := results["Qty"].Winner()
		require.True(t, ok)
		assert.Equal(t, "a_field", winner.Field)
	})

	t.Run("deterministic for any input order", func(t *testing.T) {
		scored := []memory.ScoredEpisode{
			scoredEpisode("ep-1", true, 0.7, base, map[string]string{"SKU": "product_sku", "Qty": "quantity"}),
			scoredEpisode("ep-2", true, 0.6, base.Add(time.Hour), map[string]string{"SKU": "product_sku"}),
			scoredEpisode("ep-3", true, 0.5, base.Add(2*time.Hour), map[string]string{"SKU": "item_code", "Qty": "quantity"}),
		}
		reversed := []memory.ScoredEpisode{scored[2], scored[1], scored[0]}

		a := memory.Aggregate(scored)
		b := memory.Aggregate(reversed)
		assert.Equal(t, a, b)
	})

	t.Run("zero score episodes are skipped", func(t *testing.T) {
		scored := []memory.ScoredEpisode{
			scoredEpisode("ep-1", true, 0, base, map[string]string{"SKU": "product_sku"}),
		}
		results := memory.Aggregate(scored)
		assert.Empty(t, results)
	})

	t.Run("episode ids are tracked and sorted", func(t *testing.T) {
		scored := []memory.ScoredEpisode{
			scoredEpisode("ep-2", true, 0.5, base, map[string]string{"SKU": "product_sku"}),
			scoredEpisode("ep-1", true, 0.5, base, map[string]string{"SKU": "product_sku"}),
		}
		results := memory.Aggregate(scored)
		winner, _ := results["SKU"].Winner()
		assert.Equal(t, []string{"ep-1", "ep-2"}, winner.EpisodeIDs)
	})
}
