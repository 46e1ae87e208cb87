package faqrepo

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/smart-faq/internal/domain/faq"
)

// PostgresRepository implements faq.EntryRepository using pgx. Feedback is
// stored as a JSONB column so Save stays a single idempotent upsert.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// LoadAll fetches every FAQ entry.
func (r *PostgresRepository) LoadAll(ctx context.Context) ([]faq.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, question_text, normalized_question, answer, usage_count, feedback
		FROM faq_entries
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []faq.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Find fetches a single entry by identifier.
func (r *PostgresRepository) Find(ctx context.Context, id string) (faq.Entry, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, question_text, normalized_question, answer, usage_count, feedback
		FROM faq_entries
		WHERE id = $1
		LIMIT 1
	`, id)
	if err != nil {
		return faq.Entry{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return faq.Entry{}, false, rows.Err()
	}
	entry, err := scanEntry(rows)
	if err != nil {
		return faq.Entry{}, false, err
	}
	return entry, true, rows.Err()
}

// Save upserts the full entry row.
func (r *PostgresRepository) Save(ctx context.Context, entry faq.Entry) error {
	feedback, err := json.Marshal(entry.Feedback)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO faq_entries (id, question_text, normalized_question, answer, usage_count, feedback, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO UPDATE SET
			question_text = EXCLUDED.question_text,
			normalized_question = EXCLUDED.normalized_question,
			answer = EXCLUDED.answer,
			usage_count = EXCLUDED.usage_count,
			feedback = EXCLUDED.feedback,
			updated_at = now()
	`, entry.ID, entry.Question, faq.Normalize(entry.Question), entry.Answer, entry.UsageCount, feedback)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (faq.Entry, error) {
	var (
		entry    faq.Entry
		feedback []byte
	)
	if err := row.Scan(&entry.ID, &entry.Question, &entry.NormalizedQuestion, &entry.Answer, &entry.UsageCount, &feedback); err != nil {
		return faq.Entry{}, err
	}
	if len(feedback) > 0 {
		if err := json.Unmarshal(feedback, &entry.Feedback); err != nil {
			return faq.Entry{}, err
		}
	}
	return entry, nil
}

var _ faq.EntryRepository = (*PostgresRepository)(nil)
