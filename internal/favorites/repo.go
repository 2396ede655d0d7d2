package favorites

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"eventscout/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Upsert saves an event to the user's favorites. The canonical event is
// stored as a JSON snapshot so the list renders without provider calls.
func (r *Repo) Upsert(ctx context.Context, fav models.Favorite) error {
	raw, err := json.Marshal(fav.Event)
	if err != nil {
		return fmt.Errorf("encode favorite event: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO favorites (user_id, event_id, event_json, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, event_id) DO UPDATE SET
			event_json = excluded.event_json
	`, fav.UserID, fav.EventID, string(raw))
	if err != nil {
		return fmt.Errorf("upsert favorite: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, eventID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM favorites
		WHERE user_id = ? AND event_id = ?
	`, userID, eventID)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) List(ctx context.Context, userID string, limit, offset int) ([]models.Favorite, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM favorites WHERE user_id = ?
	`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count favorites: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, event_id, event_json, created_at
		FROM favorites
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	out := make([]models.Favorite, 0, limit)
	for rows.Next() {
		fav, err := scanFavorite(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}

	return out, total, nil
}

func (r *Repo) Get(ctx context.Context, userID, eventID string) (*models.Favorite, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT user_id, event_id, event_json, created_at
		FROM favorites
		WHERE user_id = ? AND event_id = ?
	`, userID, eventID)

	var fav models.Favorite
	var raw string
	var created time.Time
	if err := row.Scan(&fav.UserID, &fav.EventID, &raw, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &fav.Event); err != nil {
		return nil, fmt.Errorf("decode favorite event: %w", err)
	}
	fav.CreatedAt = created
	fav.Event.IsFavorite = true
	return &fav, nil
}

func scanFavorite(rows *sql.Rows) (models.Favorite, error) {
	var fav models.Favorite
	var raw string
	var created time.Time
	if err := rows.Scan(&fav.UserID, &fav.EventID, &raw, &created); err != nil {
		return fav, fmt.Errorf("scan favorite row: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &fav.Event); err != nil {
		return fav, fmt.Errorf("decode favorite event: %w", err)
	}
	fav.CreatedAt = created
	fav.Event.IsFavorite = true
	return fav, nil
}
