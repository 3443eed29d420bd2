package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/breakline/surfspots/internal/apperror"
	"github.com/breakline/surfspots/internal/model"
	"github.com/breakline/surfspots/internal/repository"
)

// compile-time check that *DB implements repository.CommentRepository
var _ repository.CommentRepository = (*DB)(nil)

const commentColumns = `c.id, c.spot_id, c.user_id, c.text, c.rating, c.parent_id,
	c.edited, c.created_at, c.updated_at,
	u.username, u.email, u.image`

// CreateComment inserts a new comment. ID and timestamps are set here; the
// caller is responsible for the rating/parent invariants (see service layer).
func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()

	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, spot_id, user_id, text, rating, parent_id, edited, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.SpotID,
		comment.UserID,
		comment.Text,
		comment.Rating,
		comment.ParentID,
		comment.Edited,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	return nil
}

// GetCommentByID retrieves a single comment with its author populated.
// Returns apperror.ErrNotFound if no comment exists with that ID.
func (db *DB) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+commentColumns+`
		 FROM comments c
		 LEFT JOIN users u ON u.id = c.user_id
		 WHERE c.id = ?`,
		id,
	)

	comment, err := scanComment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}

	return comment, nil
}

// ListCommentsBySpot returns a spot's comments, newest first, authors populated.
func (db *DB) ListCommentsBySpot(ctx context.Context, spotID string) ([]model.Comment, error) {
	return db.listComments(ctx,
		`SELECT `+commentColumns+`
		 FROM comments c
		 LEFT JOIN users u ON u.id = c.user_id
		 WHERE c.spot_id = ?
		 ORDER BY c.created_at DESC`,
		spotID,
	)
}

// ListComments returns every comment, newest first, authors populated.
func (db *DB) ListComments(ctx context.Context) ([]model.Comment, error) {
	return db.listComments(ctx,
		`SELECT `+commentColumns+`
		 FROM comments c
		 LEFT JOIN users u ON u.id = c.user_id
		 ORDER BY c.created_at DESC`,
	)
}

func (db *DB) listComments(ctx context.Context, query string, args ...any) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, *comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}

// UpdateComment writes the mutable comment fields back (text and the edited
// flag). Rating and parent are immutable after creation, so they are not in
// the SET list at all.
func (db *DB) UpdateComment(ctx context.Context, comment *model.Comment) error {
	comment.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE comments
		 SET text = ?, edited = ?, updated_at = ?
		 WHERE id = ?`,
		comment.Text,
		comment.Edited,
		comment.UpdatedAt,
		comment.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating comment %s: %w", comment.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("comment", comment.ID)
	}

	return nil
}

// DeleteCommentCascade deletes a comment and, when it is top-level, all of
// its direct replies. Both deletes run in one transaction so a fault cannot
// leave orphaned replies behind.
//
// Only one level is cascaded: replies reference a top-level comment, and the
// system never nests deeper than that.
func (db *DB) DeleteCommentCascade(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM comments WHERE parent_id = ?`, id,
	); err != nil {
		return fmt.Errorf("sqlite: deleting replies of comment %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM comments WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("comment", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing delete of comment %s: %w", id, err)
	}

	return nil
}

func scanComment(row scanner) (*model.Comment, error) {
	var (
		c        model.Comment
		rating   sql.NullInt64
		parentID sql.NullString
		username sql.NullString
		email    sql.NullString
		image    sql.NullString
	)

	err := row.Scan(
		&c.ID, &c.SpotID, &c.UserID, &c.Text, &rating, &parentID,
		&c.Edited, &c.CreatedAt, &c.UpdatedAt,
		&username, &email, &image,
	)
	if err != nil {
		return nil, err
	}

	if rating.Valid {
		r := int(rating.Int64)
		c.Rating = &r
	}
	if parentID.Valid {
		p := parentID.String
		c.ParentID = &p
	}
	if username.Valid || email.Valid {
		c.User = &model.User{
			ID:       c.UserID,
			Username: username.String,
			Email:    email.String,
			Image:    image.String,
		}
	}

	return &c, nil
}
