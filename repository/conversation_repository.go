package repository

import (
	"context"
	"fmt"

	"nyayasahaya-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConversationRepository handles database operations for chat exchanges
type ConversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create records an answered exchange
func (r *ConversationRepository) Create(ctx context.Context, exchange *models.ChatExchange) error {
	query := `
		INSERT INTO chat_exchanges (
			session_id, category, question, answer, sources, fallback
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		exchange.SessionID,
		exchange.Category,
		exchange.Question,
		exchange.Answer,
		exchange.Sources,
		exchange.Fallback,
	).Scan(&exchange.ID, &exchange.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert chat exchange: %w", err)
	}
	return nil
}

// ListBySession returns the most recent exchanges of a session, oldest first
func (r *ConversationRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*models.ChatExchange, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, session_id, category, question, answer, sources, fallback, created_at
		FROM (
			SELECT * FROM chat_exchanges
			WHERE session_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []*models.ChatExchange
	for rows.Next() {
		exchange := &models.ChatExchange{}
		err := rows.Scan(
			&exchange.ID,
			&exchange.SessionID,
			&exchange.Category,
			&exchange.Question,
			&exchange.Answer,
			&exchange.Sources,
			&exchange.Fallback,
			&exchange.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat exchange: %w", err)
		}
		if exchange.Sources == nil {
			exchange.Sources = make(models.SourceRefs, 0)
		}
		exchanges = append(exchanges, exchange)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat exchanges: %w", err)
	}
	return exchanges, nil
}

// DeleteBySession removes the recorded exchanges of a session
func (r *ConversationRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM chat_exchanges WHERE session_id = $1", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete chat exchanges: %w", err)
	}
	return nil
}
