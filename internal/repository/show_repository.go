// This file defines the Show model and repository methods for shows. A Show
// is a movie or TV-series entry owned by the user who first submitted it.
// Mutable fields (title, link, poster, season count, miniseries flag,
// classification) may be rewritten by the owner on later submissions.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Show mirrors the 'shows' table plus the owner's username and display name
// joined from users.
type Show struct {
	ID          uint64
	UserID      uint64 // owner
	Title       string
	Media       string // free-text media field (platform, channel, ...)
	Type        string // sub-type tag, e.g. "brand_new"
	TvshowType  string // classification: "movie" or "serie"
	SerieSeason int    // season count
	Miniseries  bool
	Link        string
	Poster      string // stored poster file name, empty when none
	CreatedAt   time.Time
	UpdatedAt   time.Time

	OwnerUsername string
	OwnerName     string
}

const showColumns = `s.id, s.user_id, s.title, s.media, s.type, s.tvshow_type,
	s.serie_season, s.miniseries, s.link, s.poster, s.created_at, s.updated_at,
	u.username, u.name`

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories.
func (r *ShowRepo) DB() *sql.DB {
	return r.db
}

func scanShow(row interface{ Scan(...any) error }, s *Show) error {
	return row.Scan(
		&s.ID, &s.UserID, &s.Title, &s.Media, &s.Type, &s.TvshowType,
		&s.SerieSeason, &s.Miniseries, &s.Link, &s.Poster,
		&s.CreatedAt, &s.UpdatedAt,
		&s.OwnerUsername, &s.OwnerName,
	)
}

// Create inserts a new show and assigns the generated ID back to the struct.
// The freshly inserted row is re-read to populate DB-default timestamps.
func (r *ShowRepo) Create(ctx context.Context, s *Show) error {
	const q = `INSERT INTO shows (user_id, title, media, type, tvshow_type, serie_season, miniseries, link, poster)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		s.UserID, s.Title, s.Media, s.Type, s.TvshowType, s.SerieSeason, s.Miniseries, s.Link, s.Poster)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	got, err := r.GetByID(ctx, s.ID)
	if err != nil {
		return err
	}
	*s = *got
	return nil
}

// GetByID retrieves a show by its ID. It returns ErrShowNotFound if there
// is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*Show, error) {
	const q = `SELECT ` + showColumns + `
	           FROM shows s JOIN users u ON u.id = s.user_id
	           WHERE s.id = ?`
	var s Show
	if err := scanShow(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Update rewrites the mutable fields of a show. The (id, owner) pair is
// immutable; callers mutate the struct returned by GetByID and pass it back.
func (r *ShowRepo) Update(ctx context.Context, s *Show) error {
	const q = `UPDATE shows
	           SET title = ?, media = ?, type = ?, tvshow_type = ?, serie_season = ?,
	               miniseries = ?, link = ?, poster = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		s.Title, s.Media, s.Type, s.TvshowType, s.SerieSeason, s.Miniseries, s.Link, s.Poster, s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op update,
		// so confirm existence before reporting not found.
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM shows WHERE id = ? LIMIT 1`, s.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrShowNotFound
			}
			return err
		}
	}
	return nil
}

// Search returns shows whose title or media contains the query substring
// (case-insensitive via the connection collation), newest first. An empty
// query returns every show.
func (r *ShowRepo) Search(ctx context.Context, query string) ([]Show, error) {
	q := `SELECT ` + showColumns + `
	      FROM shows s JOIN users u ON u.id = s.user_id`
	var args []any
	if query != "" {
		q += ` WHERE s.title LIKE ? OR s.media LIKE ?`
		pat := "%" + escapeLike(query) + "%"
		args = append(args, pat, pat)
	}
	q += ` ORDER BY s.created_at DESC, s.id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Show
	for rows.Next() {
		var s Show
		if err := scanShow(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a show together with its votes and their reactions. The
// cleanup runs in a transaction so no partial state survives a failure.
// Vote ownership checks (no third-party votes) are the caller's job.
func (r *ShowRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM shows WHERE id = ? LIMIT 1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrShowNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM reactions WHERE vote_id IN (SELECT id FROM votes WHERE show_id = ?)`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM votes WHERE show_id = ?`, id); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM shows WHERE id = ?`, id)
	return err
}

// CountByType returns the number of shows per tvshow_type over the set of
// shows matching the query filter. Missing categories count as zero at the
// view layer.
func (r *ShowRepo) CountByType(ctx context.Context, query string) (map[string]int, error) {
	q := `SELECT tvshow_type, COUNT(*) FROM shows`
	var args []any
	if query != "" {
		q += ` WHERE title LIKE ? OR media LIKE ?`
		pat := "%" + escapeLike(query) + "%"
		args = append(args, pat, pat)
	}
	q += ` GROUP BY tvshow_type`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}
