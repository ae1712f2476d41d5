package pgstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrymomot/sharedcontext/integration/database/pg"
	"github.com/dmitrymomot/sharedcontext/internal/model"
	"github.com/dmitrymomot/sharedcontext/internal/repository"
)

const insertFeedbackSQL = `
	INSERT INTO agent_feedback
		(id, agent_id, message, category, severity, endpoint, context, status, created_at)
	VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7::jsonb, $8, $9)`

// Feedback is a Postgres FeedbackRepository.
type Feedback struct {
	db pg.Querier
}

func NewFeedback(db pg.Querier) *Feedback {
	return &Feedback{db: db}
}

func (s *Feedback) Create(ctx context.Context, f *model.Feedback) error {
	var raw *string
	if len(f.Context) > 0 {
		b, err := json.Marshal(f.Context)
		if err != nil {
			return fmt.Errorf("encode feedback context: %w", err)
		}
		str := string(b)
		raw = &str
	}

	_, err := pg.Conn(ctx, s.db).Exec(ctx, insertFeedbackSQL,
		f.ID, f.AgentID, f.Message, f.Category, f.Severity, f.Endpoint, raw, f.Status, f.CreatedAt)
	if pg.IsDuplicateKeyError(err) {
		return repository.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}
