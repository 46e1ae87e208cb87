package faq

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	apperrors "github.com/yanqian/smart-faq/pkg/errors"
	"github.com/yanqian/smart-faq/pkg/metrics"
	"github.com/yanqian/smart-faq/pkg/util"
)

// Service exposes the FAQ matching and feedback engine.
type Service interface {
	Match(ctx context.Context, req Request) (MatchResult, error)
	RegisterFeedback(ctx context.Context, req FeedbackRequest) error
	TopQuestions(ctx context.Context, n int) ([]EntrySummary, error)
	UpsertEntry(ctx context.Context, id, question, answer string) (Entry, error)
}

type service struct {
	cfg    Config
	repo   EntryRepository
	cache  AnswerCache
	usage  *metrics.Counters
	logger *slog.Logger
	locks  *entryLocks
}

// NewService wires up the FAQ domain.
func NewService(cfg Config, repo EntryRepository, cache AnswerCache, usage *metrics.Counters, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		repo:   repo,
		cache:  cache,
		usage:  usage,
		logger: logger.With("component", "faq.service"),
		locks:  newEntryLocks(),
	}
}

// Match resolves a raw query to the best stored answer or the fallback.
// A NoMatch leaves the entry set untouched; a matched entry's usage counter
// is incremented atomically before the result is returned, so a failed save
// surfaces as store_unavailable rather than a half-applied match.
func (s *service) Match(ctx context.Context, req Request) (MatchResult, error) {
	normalized := Normalize(req.Question)
	if normalized == "" {
		return MatchResult{
			Answer:       s.cfg.FallbackAnswer,
			Source:       SourceFallback,
			InvalidInput: true,
		}, nil
	}

	if result, ok := s.matchFromCache(ctx, normalized); ok {
		return result, nil
	}

	entries, err := s.repo.LoadAll(ctx)
	if err != nil {
		return MatchResult{}, apperrors.Wrap(CodeStoreUnavailable, "failed to load entries", err)
	}

	best, score, source, found := bestMatch(normalized, entries)
	if !found || score < s.cfg.MatchThreshold {
		s.usage.FallbackServed()
		return MatchResult{Answer: s.cfg.FallbackAnswer, Source: SourceFallback}, nil
	}

	if err := s.incrementUsage(ctx, best.ID); err != nil {
		return MatchResult{}, err
	}
	s.cacheAnswer(ctx, normalized, best, score)
	s.usage.MatchServed()

	return MatchResult{
		Matched:         true,
		EntryID:         best.ID,
		MatchedQuestion: best.Question,
		Answer:          best.Answer,
		Score:           score,
		Source:          source,
	}, nil
}

// RegisterFeedback appends a helpfulness vote to an existing entry and
// persists it immediately.
func (s *service) RegisterFeedback(ctx context.Context, req FeedbackRequest) error {
	unlock := s.locks.lock(req.EntryID)
	defer unlock()

	entry, ok, err := s.repo.Find(ctx, req.EntryID)
	if err != nil {
		return apperrors.Wrap(CodeStoreUnavailable, "failed to load entry", err)
	}
	if !ok {
		return apperrors.Wrap(CodeNotFound, "unknown entry: "+req.EntryID, nil)
	}

	entry.Feedback = append(entry.Feedback, FeedbackRecord{
		Helpful:   req.Helpful,
		Comment:   strings.TrimSpace(req.Comment),
		CreatedAt: util.NowUTC(),
	})
	if err := s.repo.Save(ctx, entry); err != nil {
		return apperrors.Wrap(CodeStoreUnavailable, "failed to save feedback", err)
	}
	s.usage.FeedbackRecorded()
	return nil
}

// TopQuestions returns up to n entries ordered by usage count, then helpful
// ratio, then identifier. The result is a snapshot and mutates nothing.
func (s *service) TopQuestions(ctx context.Context, n int) ([]EntrySummary, error) {
	if n <= 0 {
		return []EntrySummary{}, nil
	}
	entries, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, apperrors.Wrap(CodeStoreUnavailable, "failed to load entries", err)
	}
	summaries := make([]EntrySummary, 0, len(entries))
	for _, entry := range entries {
		summaries = append(summaries, entry.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].UsageCount != summaries[j].UsageCount {
			return summaries[i].UsageCount > summaries[j].UsageCount
		}
		if summaries[i].HelpfulRatio != summaries[j].HelpfulRatio {
			return summaries[i].HelpfulRatio > summaries[j].HelpfulRatio
		}
		return summaries[i].ID < summaries[j].ID
	})
	if len(summaries) > n {
		summaries = summaries[:n]
	}
	return summaries, nil
}

// UpsertEntry creates or replaces an entry's question and answer while
// preserving any existing usage and feedback history. Used by seed tooling.
func (s *service) UpsertEntry(ctx context.Context, id, question, answer string) (Entry, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if id == "" || question == "" || answer == "" {
		return Entry{}, apperrors.Wrap(CodeInvalidInput, "id, question and answer are required", nil)
	}
	if Normalize(question) == "" {
		return Entry{}, apperrors.Wrap(CodeInvalidInput, "question normalizes to empty text", nil)
	}

	unlock := s.locks.lock(id)
	defer unlock()

	entry := NewEntry(id, question, answer)
	existing, ok, err := s.repo.Find(ctx, id)
	if err != nil {
		return Entry{}, apperrors.Wrap(CodeStoreUnavailable, "failed to load entry", err)
	}
	if ok {
		entry.UsageCount = existing.UsageCount
		entry.Feedback = existing.Feedback
	}
	if err := s.repo.Save(ctx, entry); err != nil {
		return Entry{}, apperrors.Wrap(CodeStoreUnavailable, "failed to save entry", err)
	}
	return entry, nil
}

func (s *service) matchFromCache(ctx context.Context, normalized string) (MatchResult, bool) {
	if s.cache == nil {
		return MatchResult{}, false
	}
	cached, ok, err := s.cache.Get(ctx, normalized)
	if err != nil {
		s.logger.Warn("answer cache lookup failed", "error", err)
		return MatchResult{}, false
	}
	if !ok {
		return MatchResult{}, false
	}
	// The cached entry may have been removed since; a failed increment
	// falls through to a fresh scan.
	if err := s.incrementUsage(ctx, cached.EntryID); err != nil {
		s.logger.Warn("cached entry unusable, rescanning", "entryId", cached.EntryID, "error", err)
		return MatchResult{}, false
	}
	s.usage.MatchServed()
	return MatchResult{
		Matched:         true,
		EntryID:         cached.EntryID,
		MatchedQuestion: cached.Question,
		Answer:          cached.Answer,
		Score:           cached.Score,
		Source:          SourceCache,
	}, true
}

func (s *service) incrementUsage(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	entry, ok, err := s.repo.Find(ctx, id)
	if err != nil {
		return apperrors.Wrap(CodeStoreUnavailable, "failed to load entry", err)
	}
	if !ok {
		return apperrors.Wrap(CodeNotFound, "unknown entry: "+id, nil)
	}
	entry.UsageCount++
	if err := s.repo.Save(ctx, entry); err != nil {
		return apperrors.Wrap(CodeStoreUnavailable, "failed to save usage count", err)
	}
	return nil
}

func (s *service) cacheAnswer(ctx context.Context, normalized string, entry Entry, score float64) {
	if s.cache == nil {
		return
	}
	record := CachedAnswer{
		EntryID:   entry.ID,
		Question:  entry.Question,
		Answer:    entry.Answer,
		Score:     score,
		CreatedAt: util.NowUTC(),
	}
	if err := s.cache.Set(ctx, normalized, record, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("answer cache save failed", "error", err)
	}
}

// bestMatch runs the exact pass and then the fuzzy scan. Ties on score prefer
// the entry with the higher usage count, then the smallest identifier, so
// repeated identical queries are fully deterministic.
func bestMatch(normalized string, entries []Entry) (Entry, float64, MatchSource, bool) {
	var (
		best       Entry
		found      bool
		exactFound bool
	)
	for _, entry := range entries {
		if entry.NormalizedQuestion != normalized {
			continue
		}
		if !exactFound || preferOnTie(entry, best) {
			best = entry
		}
		exactFound = true
	}
	if exactFound {
		return best, 1.0, SourceExact, true
	}

	bestScore := 0.0
	for _, entry := range entries {
		score := Score(normalized, entry.NormalizedQuestion)
		switch {
		case !found || score > bestScore:
			best, bestScore, found = entry, score, true
		case score == bestScore:
			if preferOnTie(entry, best) {
				best = entry
			}
		}
	}
	return best, bestScore, SourceFuzzy, found
}

// preferOnTie reports whether candidate beats current when scores are equal:
// higher usage count first, then the smaller identifier.
func preferOnTie(candidate, current Entry) bool {
	if candidate.UsageCount != current.UsageCount {
		return candidate.UsageCount > current.UsageCount
	}
	return candidate.ID < current.ID
}
