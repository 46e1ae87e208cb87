package faq

import "time"

// Error codes shared with the transport layer.
const (
	CodeInvalidInput     = "invalid_input"
	CodeNotFound         = "not_found"
	CodeStoreUnavailable = "store_unavailable"
)

// MatchSource identifies how an answer was produced.
type MatchSource string

const (
	// SourceExact means the normalized query equaled a stored question.
	SourceExact MatchSource = "exact"
	// SourceFuzzy means a similarity score at or above the threshold won.
	SourceFuzzy MatchSource = "fuzzy"
	// SourceCache means a previous match for the same normalized query was reused.
	SourceCache MatchSource = "cache"
	// SourceFallback means no stored question was close enough.
	SourceFallback MatchSource = "fallback"
)

// Entry is a stored question/answer pair with its usage history.
// NormalizedQuestion is always derived from Question via Normalize;
// use NewEntry so the two never drift apart.
type Entry struct {
	ID                 string
	Question           string
	NormalizedQuestion string
	Answer             string
	UsageCount         int64
	Feedback           []FeedbackRecord
}

// NewEntry builds an entry with the normalized form derived from the question.
func NewEntry(id, question, answer string) Entry {
	return Entry{
		ID:                 id,
		Question:           question,
		NormalizedQuestion: Normalize(question),
		Answer:             answer,
	}
}

// FeedbackRecord captures one helpfulness vote. Records are append-only.
type FeedbackRecord struct {
	Helpful   bool      `json:"helpful"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Request encapsulates a FAQ query.
type Request struct {
	Question string `json:"question"`
}

// FeedbackRequest records a helpfulness vote for a served answer.
type FeedbackRequest struct {
	EntryID string
	Helpful bool
	Comment string
}

// MatchResult is returned to the transport layer. Score is set only when
// Matched is true, and is always at or above the configured threshold.
type MatchResult struct {
	Matched         bool        `json:"matched"`
	EntryID         string      `json:"entryId,omitempty"`
	MatchedQuestion string      `json:"matchedQuestion,omitempty"`
	Answer          string      `json:"answer"`
	Score           float64     `json:"score,omitempty"`
	Source          MatchSource `json:"source"`
	InvalidInput    bool        `json:"invalidInput,omitempty"`
}

// EntrySummary is the ranked view served by TopQuestions.
type EntrySummary struct {
	ID            string  `json:"id"`
	Question      string  `json:"question"`
	UsageCount    int64   `json:"usageCount"`
	FeedbackCount int     `json:"feedbackCount"`
	HelpfulRatio  float64 `json:"helpfulRatio"`
}

// Summary projects the entry into its ranked view.
func (e Entry) Summary() EntrySummary {
	helpful := 0
	for _, record := range e.Feedback {
		if record.Helpful {
			helpful++
		}
	}
	ratio := 0.0
	if len(e.Feedback) > 0 {
		ratio = float64(helpful) / float64(len(e.Feedback))
	}
	return EntrySummary{
		ID:            e.ID,
		Question:      e.Question,
		UsageCount:    e.UsageCount,
		FeedbackCount: len(e.Feedback),
		HelpfulRatio:  ratio,
	}
}
