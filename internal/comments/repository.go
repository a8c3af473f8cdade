// internal/comments/repository.go
package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/oluseyi-dev/inspira-backend/internal/common/apperrors"
	"github.com/oluseyi-dev/inspira-backend/internal/inspirations"
	"github.com/oluseyi-dev/inspira-backend/internal/ledger"
)

// PostRef is the slice of an inspiration the comment flows need for
// visibility checks and counter updates.
type PostRef struct {
	ID       int64 `db:"id"`
	UserID   int64 `db:"user_id"`
	IsPublic bool  `db:"is_public"`
}

// Repository is the storage contract for comments and comment likes.
// Comment writes that move the parent post's comments_count run in one
// transaction inside the implementation.
type Repository interface {
	GetPost(ctx context.Context, id int64) (*PostRef, error)
	GetByID(ctx context.Context, id, viewerID int64) (*Comment, error)
	ListTop(ctx context.Context, inspirationID, viewerID int64, sort string, limit, offset int) ([]Comment, int, error)
	ListReplies(ctx context.Context, parentID, viewerID int64, limit, offset int) ([]Comment, int, error)

	// Create inserts the comment and, for a top-level comment only, bumps
	// the post's comments_count in the same transaction.
	Create(ctx context.Context, c *Comment) error
	UpdateContent(ctx context.Context, id int64, content string) error

	// Delete removes the comment (replies cascade) and, for a top-level
	// comment only, decrements the post's comments_count.
	Delete(ctx context.Context, c *Comment) error

	// ToggleLike flips the (viewer, comment) like state and returns the
	// new state with the post-commit counter value.
	ToggleLike(ctx context.Context, commentID, userID int64) (bool, int, error)
}

// PostgresRepository implements Repository on sqlx/lib-pq
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const commentColumns = `
	c.id, c.inspiration_id, c.user_id, c.parent_id, c.content, c.likes_count,
	c.created_at, c.updated_at,
	COALESCE(u.username, '') AS username,
	COALESCE(u.avatar, '') AS avatar,
	(SELECT COUNT(*) FROM inspiration_comments r WHERE r.parent_id = c.id) AS reply_count`

func (r *PostgresRepository) GetPost(ctx context.Context, id int64) (*PostRef, error) {
	ref := &PostRef{}
	err := r.db.GetContext(ctx, ref,
		`SELECT id, user_id, is_public FROM inspirations WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.NotFound, "inspiration not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get inspiration %d: %w", id, err)
	}
	return ref, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, viewerID int64) (*Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			EXISTS(SELECT 1 FROM inspiration_comment_likes cl WHERE cl.comment_id = c.id AND cl.user_id = $2) AS is_liked
		FROM inspiration_comments c
		LEFT JOIN users u ON c.user_id = u.id
		WHERE c.id = $1`, commentColumns)

	comment, err := scanComment(r.db.QueryRowxContext(ctx, query, id, viewerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.NotFound, "comment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get comment %d: %w", id, err)
	}
	return comment, nil
}

func (r *PostgresRepository) ListTop(ctx context.Context, inspirationID, viewerID int64, sort string, limit, offset int) ([]Comment, int, error) {
	var total int
	err := r.db.QueryRowxContext(ctx,
		`SELECT COUNT(*) FROM inspiration_comments WHERE inspiration_id = $1 AND parent_id IS NULL`,
		inspirationID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	order := "c.created_at DESC, c.id DESC"
	switch sort {
	case SortOldest:
		order = "c.created_at ASC, c.id ASC"
	case SortMostLiked:
		order = "c.likes_count DESC, c.created_at DESC, c.id DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s,
			EXISTS(SELECT 1 FROM inspiration_comment_likes cl WHERE cl.comment_id = c.id AND cl.user_id = $2) AS is_liked
		FROM inspiration_comments c
		LEFT JOIN users u ON c.user_id = u.id
		WHERE c.inspiration_id = $1 AND c.parent_id IS NULL
		ORDER BY %s
		LIMIT $3 OFFSET $4`, commentColumns, order)

	return r.queryComments(ctx, query, total, inspirationID, viewerID, limit, offset)
}

func (r *PostgresRepository) ListReplies(ctx context.Context, parentID, viewerID int64, limit, offset int) ([]Comment, int, error) {
	var total int
	err := r.db.QueryRowxContext(ctx,
		`SELECT COUNT(*) FROM inspiration_comments WHERE parent_id = $1`, parentID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count replies: %w", err)
	}

	// Replies always read oldest first, conversation order
	query := fmt.Sprintf(`
		SELECT %s,
			EXISTS(SELECT 1 FROM inspiration_comment_likes cl WHERE cl.comment_id = c.id AND cl.user_id = $2) AS is_liked
		FROM inspiration_comments c
		LEFT JOIN users u ON c.user_id = u.id
		WHERE c.parent_id = $1
		ORDER BY c.created_at ASC, c.id ASC
		LIMIT $3 OFFSET $4`, commentColumns)

	return r.queryComments(ctx, query, total, parentID, viewerID, limit, offset)
}

func (r *PostgresRepository) queryComments(ctx context.Context, query string, total int, args ...interface{}) ([]Comment, int, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, *comment)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *Comment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO inspiration_comments (inspiration_id, user_id, parent_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		c.InspirationID, c.UserID, c.ParentID, c.Content,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}

	// comments_count tracks top-level comments only; replies are reached
	// through their parent's reply_count.
	if c.ParentID == nil {
		if _, err := ledger.Increment(ctx, tx, ledger.PostComments, c.InspirationID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE inspiration_comments SET content = $1, updated_at = NOW() WHERE id = $2`,
		content, id)
	if err != nil {
		return fmt.Errorf("update comment %d: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperrors.New(apperrors.NotFound, "comment not found")
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, c *Comment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Replies and like rows cascade with the comment
	res, err := tx.ExecContext(ctx, `DELETE FROM inspiration_comments WHERE id = $1`, c.ID)
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", c.ID, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperrors.New(apperrors.NotFound, "comment not found")
	}

	if c.ParentID == nil {
		if _, err := ledger.Decrement(ctx, tx, ledger.PostComments, c.InspirationID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) ToggleLike(ctx context.Context, commentID, userID int64) (bool, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO inspiration_comment_likes (comment_id, user_id, created_at)
		 VALUES ($1, $2, NOW()) ON CONFLICT DO NOTHING`,
		commentID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("insert comment like: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}

	var liked bool
	var count int
	if inserted == 1 {
		liked = true
		count, err = ledger.Increment(ctx, tx, ledger.CommentLikes, commentID)
		if err != nil {
			return false, 0, err
		}
	} else {
		del, err := tx.ExecContext(ctx,
			`DELETE FROM inspiration_comment_likes WHERE comment_id = $1 AND user_id = $2`,
			commentID, userID)
		if err != nil {
			return false, 0, fmt.Errorf("delete comment like: %w", err)
		}

		deleted, err := del.RowsAffected()
		if err != nil {
			return false, 0, err
		}

		if deleted == 1 {
			count, err = ledger.Decrement(ctx, tx, ledger.CommentLikes, commentID)
			if err != nil {
				return false, 0, err
			}
		} else {
			err = tx.QueryRowxContext(ctx,
				`SELECT likes_count FROM inspiration_comments WHERE id = $1`, commentID).Scan(&count)
			if err != nil {
				return false, 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanComment(row rowScanner) (*Comment, error) {
	c := &Comment{Author: &inspirations.Author{}}
	err := row.Scan(
		&c.ID, &c.InspirationID, &c.UserID, &c.ParentID, &c.Content, &c.LikesCount,
		&c.CreatedAt, &c.UpdatedAt,
		&c.Author.Username, &c.Author.Avatar,
		&c.ReplyCount,
		&c.IsLiked,
	)
	if err != nil {
		return nil, err
	}
	c.Author.ID = c.UserID
	return c, nil
}
