package faq

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	apperrors "github.com/yanqian/smart-faq/pkg/errors"
	"github.com/yanqian/smart-faq/pkg/metrics"
)

type stubRepo struct {
	mu      sync.Mutex
	entries map[string]Entry
	loadErr error
	saveErr error
}

func newStubRepo(entries ...Entry) *stubRepo {
	repo := &stubRepo{entries: make(map[string]Entry)}
	for _, entry := range entries {
		repo.entries[entry.ID] = entry
	}
	return repo
}

func (r *stubRepo) LoadAll(context.Context) ([]Entry, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry)
	}
	return out, nil
}

func (r *stubRepo) Find(_ context.Context, id string) (Entry, bool, error) {
	if r.loadErr != nil {
		return Entry{}, false, r.loadErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	return entry, ok, nil
}

func (r *stubRepo) Save(_ context.Context, entry Entry) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = entry
	return nil
}

func (r *stubRepo) usage(id string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[id].UsageCount
}

type stubCache struct {
	answers map[string]CachedAnswer
	sets    int
}

func (c *stubCache) Get(_ context.Context, normalized string) (CachedAnswer, bool, error) {
	if c.answers == nil {
		return CachedAnswer{}, false, nil
	}
	answer, ok := c.answers[normalized]
	return answer, ok, nil
}

func (c *stubCache) Set(_ context.Context, normalized string, answer CachedAnswer, _ time.Duration) error {
	if c.answers == nil {
		c.answers = make(map[string]CachedAnswer)
	}
	c.answers[normalized] = answer
	c.sets++
	return nil
}

func testService(repo EntryRepository, cache AnswerCache) Service {
	cfg := Config{
		MatchThreshold: 0.6,
		FallbackAnswer: "Desculpe, não encontrei uma resposta para a sua pergunta.",
		TopQuestions:   10,
		CacheTTL:       time.Minute,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(cfg, repo, cache, metrics.NewCounters(), logger)
}

func storeEntries() []Entry {
	hours := NewEntry("q-hours", "Qual o horário de funcionamento?", "Das 9h às 18h.")
	hours.UsageCount = 5
	store := NewEntry("q-store-hours", "Horário de funcionamento da loja?", "A loja abre das 9h às 18h.")
	store.UsageCount = 2
	return []Entry{hours, store}
}

func TestMatchExact(t *testing.T) {
	repo := newStubRepo(storeEntries()...)
	svc := testService(repo, nil)

	result, err := svc.Match(context.Background(), Request{Question: "Horário de funcionamento da loja?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Matched || result.EntryID != "q-store-hours" {
		t.Fatalf("expected exact match on q-store-hours, got %+v", result)
	}
	if result.Score != 1.0 || result.Source != SourceExact {
		t.Fatalf("expected score 1.0 from exact pass, got %+v", result)
	}
	if got := repo.usage("q-store-hours"); got != 3 {
		t.Fatalf("expected usage 3 after match, got %d", got)
	}
}

func TestMatchNoMatchLeavesStoreUntouched(t *testing.T) {
	repo := newStubRepo(storeEntries()...)
	svc := testService(repo, nil)

	result, err := svc.Match(context.Background(), Request{Question: "Quem é o presidente do Brasil?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Matched || result.Source != SourceFallback {
		t.Fatalf("expected fallback, got %+v", result)
	}
	if result.Answer == "" {
		t.Fatal("fallback answer missing")
	}
	if repo.usage("q-hours") != 5 || repo.usage("q-store-hours") != 2 {
		t.Fatal("NoMatch must not change usage counters")
	}
}

func TestMatchThresholdBoundary(t *testing.T) {
	entry := NewEntry("q-1", "alpha beta gamma delta epsilon", "answer")
	repo := newStubRepo(entry)
	svc := testService(repo, nil)

	// 3 shared tokens over a 5 token union scores exactly 0.6
	result, err := svc.Match(context.Background(), Request{Question: "alpha beta gamma"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Matched || result.Score != 0.6 || result.Source != SourceFuzzy {
		t.Fatalf("score at threshold must match, got %+v", result)
	}

	// 2 shared over 5 scores 0.4, strictly below threshold
	below, err := svc.Match(context.Background(), Request{Question: "alpha beta"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if below.Matched {
		t.Fatalf("score below threshold must not match, got %+v", below)
	}
}

func TestMatchTieBreak(t *testing.T) {
	popular := NewEntry("z-popular", "alpha beta gamma", "popular answer")
	popular.UsageCount = 10
	quiet := NewEntry("a-quiet", "gamma beta alpha", "quiet answer")
	quiet.UsageCount = 1
	repo := newStubRepo(popular, quiet)
	svc := testService(repo, nil)

	// both entries score 2/3 against the query; higher usage wins
	result, err := svc.Match(context.Background(), Request{Question: "alpha beta"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EntryID != "z-popular" {
		t.Fatalf("expected usage tie-break to pick z-popular, got %+v", result)
	}
}

func TestMatchTieBreakByIdentifier(t *testing.T) {
	first := NewEntry("a-1", "alpha beta gamma", "first")
	first.UsageCount = 3
	second := NewEntry("b-2", "gamma beta alpha", "second")
	second.UsageCount = 3
	repo := newStubRepo(first, second)
	svc := testService(repo, nil)

	for i := 0; i < 5; i++ {
		result, err := svc.Match(context.Background(), Request{Question: "alpha beta"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.EntryID != "a-1" {
			t.Fatalf("identifier tie-break must be deterministic, got %+v", result)
		}
		// keep the counters level so the tie persists across iterations
		entry, _, _ := repo.Find(context.Background(), "b-2")
		entry.UsageCount = repo.usage("a-1")
		if err := repo.Save(context.Background(), entry); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
}

func TestMatchInvalidInput(t *testing.T) {
	repo := newStubRepo(storeEntries()...)
	svc := testService(repo, nil)

	result, err := svc.Match(context.Background(), Request{Question: "   \t "})
	if err != nil {
		t.Fatalf("invalid input must be a flagged result, not an error: %v", err)
	}
	if !result.InvalidInput || result.Matched {
		t.Fatalf("expected invalid-input fallback, got %+v", result)
	}
	if repo.usage("q-hours") != 5 {
		t.Fatal("invalid input must not touch the store")
	}
}

func TestMatchUsageMonotonicity(t *testing.T) {
	repo := newStubRepo(storeEntries()...)
	svc := testService(repo, nil)

	const n = 4
	for i := 0; i < n; i++ {
		if _, err := svc.Match(context.Background(), Request{Question: "Qual o horário de funcionamento?"}); err != nil {
			t.Fatalf("match %d failed: %v", i, err)
		}
	}
	if got := repo.usage("q-hours"); got != 5+n {
		t.Fatalf("expected usage %d, got %d", 5+n, got)
	}
}

func TestMatchStoreUnavailable(t *testing.T) {
	repo := newStubRepo(storeEntries()...)
	repo.loadErr = errors.New("connection refused")
	svc := testService(repo, nil)

	_, err := svc.Match(context.Background(), Request{Question: "Qual o horário de funcionamento?"})
	if err == nil {
		t.Fatal("store failure must not masquerade as NoMatch")
	}
	if !apperrors.IsCode(err, CodeStoreUnavailable) {
		t.Fatalf("expected store_unavailable, got %v", err)
	}
}

func TestMatchFailedSaveFailsWhole(t *testing.T) {
	repo := newStubRepo(storeEntries()...)
	repo.saveErr = errors.New("write timeout")
	svc := testService(repo, nil)

	_, err := svc.Match(context.Background(), Request{Question: "Qual o horário de funcionamento?"})
	if !apperrors.IsCode(err, CodeStoreUnavailable) {
		t.Fatalf("expected store_unavailable, got %v", err)
	}
	if repo.usage("q-hours") != 5 {
		t.Fatal("usage increment must be all-or-nothing")
	}
}

func TestMatchServedFromCache(t *testing.T) {
	repo := newStubRepo(storeEntries()...)
	cache := &stubCache{}
	svc := testService(repo, cache)

	first, err := svc.Match(context.Background(), Request{Question: "Qual o horário de funcionamento?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Source != SourceExact || cache.sets != 1 {
		t.Fatalf("first match should scan and populate the cache, got %+v", first)
	}

	second, err := svc.Match(context.Background(), Request{Question: "qual o horario de funcionamento"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Source != SourceCache || second.EntryID != "q-hours" {
		t.Fatalf("expected cache hit, got %+v", second)
	}
	if got := repo.usage("q-hours"); got != 7 {
		t.Fatalf("cache hits must still count usage, got %d", got)
	}
}

func TestRegisterFeedbackNotFound(t *testing.T) {
	repo := newStubRepo(storeEntries()...)
	svc := testService(repo, nil)

	err := svc.RegisterFeedback(context.Background(), FeedbackRequest{EntryID: "missing", Helpful: true})
	if !apperrors.IsCode(err, CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if len(repo.entries) != 2 {
		t.Fatal("entry set must be unchanged after a rejected feedback")
	}
}

func TestRegisterFeedbackAppends(t *testing.T) {
	repo := newStubRepo(storeEntries()...)
	svc := testService(repo, nil)

	if err := svc.RegisterFeedback(context.Background(), FeedbackRequest{EntryID: "q-hours", Helpful: true, Comment: "  obrigado  "}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.RegisterFeedback(context.Background(), FeedbackRequest{EntryID: "q-hours", Helpful: false}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, ok, _ := repo.Find(context.Background(), "q-hours")
	if !ok || len(entry.Feedback) != 2 {
		t.Fatalf("expected 2 feedback records, got %+v", entry.Feedback)
	}
	if !entry.Feedback[0].Helpful || entry.Feedback[0].Comment != "obrigado" {
		t.Fatalf("first record wrong: %+v", entry.Feedback[0])
	}
	if entry.Feedback[1].Helpful {
		t.Fatalf("second record wrong: %+v", entry.Feedback[1])
	}
	if entry.Feedback[0].CreatedAt.IsZero() {
		t.Fatal("feedback timestamp missing")
	}
}

func TestTopQuestionsOrdering(t *testing.T) {
	busy := NewEntry("c-busy", "busy question", "a")
	busy.UsageCount = 9
	liked := NewEntry("b-liked", "liked question", "b")
	liked.UsageCount = 4
	liked.Feedback = []FeedbackRecord{{Helpful: true}, {Helpful: true}}
	mixed := NewEntry("a-mixed", "mixed question", "c")
	mixed.UsageCount = 4
	mixed.Feedback = []FeedbackRecord{{Helpful: true}, {Helpful: false}}
	silent := NewEntry("d-silent", "silent question", "d")
	silent.UsageCount = 4

	repo := newStubRepo(busy, liked, mixed, silent)
	svc := testService(repo, nil)

	got, err := svc.TopQuestions(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"c-busy", "b-liked", "a-mixed", "d-silent"}
	if len(got) != len(want) {
		t.Fatalf("expected %d summaries, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s got %s", i, id, got[i].ID)
		}
	}
	if got[1].HelpfulRatio != 1.0 || got[2].HelpfulRatio != 0.5 || got[3].HelpfulRatio != 0.0 {
		t.Fatalf("helpful ratios wrong: %+v", got)
	}
}

func TestTopQuestionsBounds(t *testing.T) {
	repo := newStubRepo(storeEntries()...)
	svc := testService(repo, nil)

	empty, err := svc.TopQuestions(context.Background(), 0)
	if err != nil || len(empty) != 0 {
		t.Fatalf("n=0 must return an empty sequence, got %v %v", empty, err)
	}
	all, err := svc.TopQuestions(context.Background(), 100)
	if err != nil || len(all) != 2 {
		t.Fatalf("n>=count must return every entry, got %v %v", all, err)
	}
	one, err := svc.TopQuestions(context.Background(), 1)
	if err != nil || len(one) != 1 || one[0].ID != "q-hours" {
		t.Fatalf("n=1 must return the most used entry, got %v %v", one, err)
	}
}

func TestUpsertEntryPreservesHistory(t *testing.T) {
	repo := newStubRepo(storeEntries()...)
	svc := testService(repo, nil)

	updated, err := svc.UpsertEntry(context.Background(), "q-hours", "Qual é o horário de atendimento?", "Atendemos das 8h às 17h.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.UsageCount != 5 {
		t.Fatalf("upsert must preserve usage, got %d", updated.UsageCount)
	}
	if updated.NormalizedQuestion != Normalize(updated.Question) {
		t.Fatal("normalized question out of sync")
	}
}

func TestUpsertEntryRejectsEmpty(t *testing.T) {
	repo := newStubRepo()
	svc := testService(repo, nil)

	if _, err := svc.UpsertEntry(context.Background(), "id-1", "   ", "answer"); !apperrors.IsCode(err, CodeInvalidInput) {
		t.Fatalf("expected invalid_input, got %v", err)
	}
	if _, err := svc.UpsertEntry(context.Background(), "id-1", "???", "answer"); !apperrors.IsCode(err, CodeInvalidInput) {
		t.Fatalf("punctuation-only question must be rejected, got %v", err)
	}
}
