package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"civicpulse/contexts/civic-reporting/issue-service/domain/entities"
	domainerrors "civicpulse/contexts/civic-reporting/issue-service/domain/errors"
	"civicpulse/contexts/civic-reporting/issue-service/ports"
)

// Store keeps issues in memory for tests and local runs.
type Store struct {
	mu     sync.RWMutex
	issues map[string]entities.Issue
}

func NewStore() *Store {
	return &Store{issues: make(map[string]entities.Issue)}
}

func (s *Store) SaveIssue(_ context.Context, issue entities.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issues[issue.IssueID] = issue
	return nil
}

func (s *Store) GetIssue(_ context.Context, issueID string) (entities.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	issue, ok := s.issues[issueID]
	if !ok {
		return entities.Issue{}, domainerrors.ErrIssueNotFound
	}
	return issue, nil
}

func (s *Store) ListIssues(_ context.Context, filter ports.IssueFilter) ([]entities.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Issue, 0, len(s.issues))
	for _, issue := range s.issues {
		if filter.Category != "" && issue.Category != filter.Category {
			continue
		}
		if filter.ReporterID != "" && issue.ReporterID != filter.ReporterID {
			continue
		}
		out = append(out, issue)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].IssueID < out[j].IssueID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// SystemClock satisfies the clock port with wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator issues UUIDv4 identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(context.Context) (string, error) { return uuid.NewString(), nil }

var (
	_ ports.IssueRepository = (*Store)(nil)
	_ ports.Clock           = SystemClock{}
	_ ports.IDGenerator     = UUIDGenerator{}
)
