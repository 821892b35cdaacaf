/*
Package store is the persistence gateway for direct messages and user
profiles, backed by a pgx connection pool.

Connections are acquired per operation and released before any fan-out
happens; nothing in this package holds a pool resource across a
broadcast.
*/
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Message is a persisted direct message. MessageID is assigned by the
// database and is the only identifier ever returned to the sender.
type Message struct {
	MessageID  int64     `json:"message_id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Profile is the display data joined onto a message at broadcast time.
type Profile struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	PfpPath  string `json:"pfp_path"`
}

// Store executes message and profile queries against PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InsertMessage durably appends a message inside a single transaction
// and returns the stored row including its database-assigned ID and
// timestamp. On any failure the transaction is rolled back and the
// message must not be broadcast.
func (s *Store) InsertMessage(ctx context.Context, senderID, receiverID int64, content string) (Message, error) {
	msg := Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("begin insert message tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO messages (sender_id, receiver_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING message_id, created_at`,
		senderID, receiverID, content,
	).Scan(&msg.MessageID, &msg.CreatedAt)
	if err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Message{}, fmt.Errorf("commit insert message tx: %w", err)
	}

	return msg, nil
}

// ListConversation returns up to limit of the most recent messages
// exchanged between the two users, oldest first within the page. The
// query selects newest-first so the cap keeps the latest messages of a
// long conversation, then the page is flipped back to ascending order.
func (s *Store) ListConversation(ctx context.Context, userA, userB int64, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT message_id, sender_id, receiver_id, content, created_at
		 FROM messages
		 WHERE (sender_id = $1 AND receiver_id = $2)
		    OR (sender_id = $2 AND receiver_id = $1)
		 ORDER BY created_at DESC, message_id DESC
		 LIMIT $3`,
		userA, userB, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0, limit)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.MessageID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversation rows: %w", err)
	}

	reverseMessages(messages)

	return messages, nil
}

// reverseMessages flips a newest-first page into ascending order.
func reverseMessages(messages []Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}

// GetProfile fetches the current display name and avatar reference for
// a user. Callers treat pgx.ErrNoRows (db.IsNotFound) as a degradable
// condition, not a fault.
func (s *Store) GetProfile(ctx context.Context, userID int64) (Profile, error) {
	p := Profile{UserID: userID}

	err := s.pool.QueryRow(ctx,
		`SELECT username, pfp_path FROM users WHERE user_id = $1`,
		userID,
	).Scan(&p.Username, &p.PfpPath)
	if err != nil {
		return Profile{}, err
	}

	return p, nil
}

// UpdateUsername changes the user's display handle. Returns
// pgx.ErrNoRows (db.IsNotFound) when the account does not exist.
func (s *Store) UpdateUsername(ctx context.Context, userID int64, username string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET username = $2 WHERE user_id = $1`,
		userID, username,
	)
	if err != nil {
		return fmt.Errorf("update username: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// UpdateAvatar stores a new avatar reference for the user and returns
// the previous one so the caller can delete the replaced object.
func (s *Store) UpdateAvatar(ctx context.Context, userID int64, pfpPath string) (string, error) {
	var previous string

	err := s.pool.QueryRow(ctx,
		`UPDATE users u
		 SET pfp_path = $2
		 FROM (SELECT pfp_path FROM users WHERE user_id = $1) old
		 WHERE u.user_id = $1
		 RETURNING old.pfp_path`,
		userID, pfpPath,
	).Scan(&previous)
	if err != nil {
		return "", fmt.Errorf("update avatar: %w", err)
	}

	return previous, nil
}
