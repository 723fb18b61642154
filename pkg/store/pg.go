package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pintpoint/realtimekit/pkg/pg"
)

// PGStore is the PostgreSQL implementation of every store interface,
// backed by a shared pgx connection pool.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a Postgres-backed store on the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) UsersByVenue(ctx context.Context, venueID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id FROM venue_favorites WHERE venue_id = $1`, venueID)
	if err != nil {
		return nil, fmt.Errorf("query venue favorites: %w", err)
	}
	return collectIDs(rows)
}

func (s *PGStore) UsersByEvent(ctx context.Context, eventID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id FROM event_interests WHERE event_id = $1`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query event interests: %w", err)
	}
	return collectIDs(rows)
}

func (s *PGStore) ByUserIDs(ctx context.Context, userIDs []string) (map[string]Preferences, error) {
	if len(userIDs) == 0 {
		return map[string]Preferences{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT user_id, venue_updates, happy_hour_updates, daily_special_updates, event_updates, claim_updates
		 FROM notification_preferences
		 WHERE user_id = ANY($1)`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("query notification preferences: %w", err)
	}
	defer rows.Close()

	result := make(map[string]Preferences, len(userIDs))
	for rows.Next() {
		var p Preferences
		if err := rows.Scan(&p.UserID, &p.VenueUpdates, &p.HappyHourUpdates,
			&p.DailySpecialUpdates, &p.EventUpdates, &p.ClaimUpdates); err != nil {
			return nil, fmt.Errorf("scan preference row: %w", err)
		}
		result[p.UserID] = p
	}
	return result, rows.Err()
}

func (s *PGStore) VenueName(ctx context.Context, venueID string) (string, error) {
	var name string
	err := s.pool.QueryRow(ctx,
		`SELECT name FROM venues WHERE id = $1`, venueID).Scan(&name)
	if pg.IsNotFoundError(err) {
		return "", ErrVenueNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query venue name: %w", err)
	}
	return name, nil
}

func (s *PGStore) BreweryName(ctx context.Context, breweryID string) (string, error) {
	var name string
	err := s.pool.QueryRow(ctx,
		`SELECT name FROM breweries WHERE id = $1`, breweryID).Scan(&name)
	if pg.IsNotFoundError(err) {
		return "", ErrBreweryNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query brewery name: %w", err)
	}
	return name, nil
}

func (s *PGStore) CreateBatch(ctx context.Context, notifs []Notification) error {
	if len(notifs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, n := range notifs {
		createdAt := n.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		batch.Queue(
			`INSERT INTO notifications (id, user_id, type, content, related_entity_id, related_entity_type, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			n.ID, n.UserID, n.Type, n.Content, n.RelatedEntityID, n.RelatedEntityType, createdAt,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range notifs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert notification batch: %w", err)
		}
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, userID, notifID string) (*Notification, error) {
	var n Notification
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, type, content, related_entity_id, related_entity_type, read, read_at, created_at
		 FROM notifications
		 WHERE user_id = $1 AND id = $2`, userID, notifID).
		Scan(&n.ID, &n.UserID, &n.Type, &n.Content, &n.RelatedEntityID,
			&n.RelatedEntityType, &n.Read, &n.ReadAt, &n.CreatedAt)
	if pg.IsNotFoundError(err) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query notification: %w", err)
	}
	return &n, nil
}

func (s *PGStore) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	query := `SELECT id, user_id, type, content, related_entity_id, related_entity_type, read, read_at, created_at
	          FROM notifications
	          WHERE user_id = $1`
	args := []any{userID}

	if opts.OnlyUnread {
		query += ` AND read = false`
	}
	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var notifs []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Content, &n.RelatedEntityID,
			&n.RelatedEntityType, &n.Read, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

func (s *PGStore) MarkRead(ctx context.Context, userID string, notifIDs ...string) error {
	if len(notifIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE notifications
		 SET read = true, read_at = now()
		 WHERE user_id = $1 AND id = ANY($2) AND read = false`, userID, notifIDs)
	if err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

func (s *PGStore) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE notifications
		 SET read = true, read_at = now()
		 WHERE user_id = $1 AND read = false`, userID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, userID string, notifIDs ...string) error {
	if len(notifIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`DELETE FROM notifications WHERE user_id = $1 AND id = ANY($2)`, userID, notifIDs)
	if err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}

func (s *PGStore) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE user_id = $1 AND read = false`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func collectIDs(rows pgx.Rows) ([]string, error) {
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
