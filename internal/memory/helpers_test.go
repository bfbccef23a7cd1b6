package memory_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/mapmem/mapmem-go/internal/memory"
	"github.com/mapmem/mapmem-go/internal/models"
)

// testLogger creates a logger for test visibility.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// fakeStore is an in-memory EventStore with optional fault injection.
type fakeStore struct {
	mu          sync.Mutex
	episodes    []models.Episode
	reflections map[string]models.Reflection
	nextID      int
	now         time.Time

	queryErr  error
	upsertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reflections: make(map[string]models.Reflection),
		now:         time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *fakeStore) AppendEpisode(ctx context.Context, in models.EpisodeInput) (*models.Episode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.now = s.now.Add(time.Minute)
	ep := models.Episode{
		ID:              fmt.Sprintf("ep-%03d", s.nextID),
		Namespace:       in.Namespace,
		ActorID:         in.ActorID,
		FilenamePattern: in.FilenamePattern,
		FileSignature:   in.FileSignature,
		SheetMetadata:   in.SheetMetadata,
		ColumnMappings:  in.ColumnMappings,
		UserCorrections: in.UserCorrections,
		Success:         in.Success,
		MatchRate:       in.MatchRate,
		SchemaVersion:   in.SchemaVersion,
		TargetTable:     in.TargetTable,
		Description:     in.Description,
		Embedding:       in.Embedding,
		CreatedAt:       s.now,
	}
	s.episodes = append(s.episodes, ep)
	return &ep, nil
}

func (s *fakeStore) QueryEpisodes(ctx context.Context, namespace string, filter models.EpisodeFilter, limit int) ([]models.Episode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queryErr != nil {
		return nil, s.queryErr
	}

	matched := make([]models.Episode, 0, len(s.episodes))
	for _, ep := range s.episodes {
		if ep.Namespace != namespace {
			continue
		}
		if filter.TargetTable != "" && ep.TargetTable != filter.TargetTable {
			continue
		}
		if filter.FileSignature != "" && ep.FileSignature != filter.FileSignature {
			continue
		}
		if !filter.Since.IsZero() && ep.CreatedAt.Before(filter.Since) {
			continue
		}
		matched = append(matched, ep)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *fakeStore) UpsertReflection(ctx context.Context, r models.Reflection) (*models.Reflection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.upsertErr != nil {
		return nil, s.upsertErr
	}

	r.ID = r.ClusterKey
	if existing, ok := s.reflections[r.ClusterKey]; ok {
		r.CreatedAt = existing.CreatedAt
	} else {
		r.CreatedAt = s.now
	}
	s.reflections[r.ClusterKey] = r
	return &r, nil
}

func (s *fakeStore) QueryReflections(ctx context.Context, namespace, targetTable string, limit int) ([]models.Reflection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]models.Reflection, 0, len(s.reflections))
	for _, r := range s.reflections {
		if r.Namespace != namespace {
			continue
		}
		if targetTable != "" && r.TargetTable != targetTable {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ClusterKey < matched[j].ClusterKey
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// seedEpisode inserts an episode directly, bypassing the append path.
func (s *fakeStore) seedEpisode(ep models.Episode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	if ep.ID == "" {
		ep.ID = fmt.Sprintf("ep-%03d", s.nextID)
	}
	if ep.CreatedAt.IsZero() {
		s.now = s.now.Add(time.Minute)
		ep.CreatedAt = s.now
	}
	s.episodes = append(s.episodes, ep)
}

// fakeEmbedder returns fixed vectors per text, falling back to a default.
type fakeEmbedder struct {
	vectors map[string][]float32
	fallbck []float32
	err     error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return f.fallbck, nil
}

var _ memory.EventStore = (*fakeStore)(nil)
var _ memory.Embedder = (*fakeEmbedder)(nil)
