// internal/inspirations/repository.go
package inspirations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/oluseyi-dev/inspira-backend/internal/common/apperrors"
	"github.com/oluseyi-dev/inspira-backend/internal/ledger"
)

// Repository is the storage contract for inspirations, likes and shares.
// Mutations that touch a counter and its ledger table run in one
// transaction inside the implementation.
type Repository interface {
	Create(ctx context.Context, post *Inspiration) error
	GetByID(ctx context.Context, id, viewerID int64) (*Inspiration, error)
	List(ctx context.Context, f ListFilter) ([]Inspiration, int, error)
	Delete(ctx context.Context, id int64) error

	// ToggleLike flips the (viewer, post) like state and returns the new
	// state with the post-commit counter value.
	ToggleLike(ctx context.Context, postID, userID int64) (bool, int, error)

	// CreateShare persists the derived post, the audit row and the root's
	// counter bump atomically. derived.ID and share.ID are set on return.
	CreateShare(ctx context.Context, derived *Inspiration, share *Share) error
	ListShares(ctx context.Context, originalID int64, limit, offset int) ([]Share, int, error)
}

// PostgresRepository implements Repository on sqlx/lib-pq
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const postColumns = `
	i.id, i.user_id, i.content, i.images, i.tags, i.location, i.is_public,
	i.likes_count, i.comments_count, i.shares_count, i.kind, i.original_id,
	i.created_at, i.updated_at,
	COALESCE(u.username, '') AS username,
	COALESCE(u.avatar, '') AS avatar,
	COALESCE(u.bio, '') AS bio`

func (r *PostgresRepository) Create(ctx context.Context, post *Inspiration) error {
	query := `
		INSERT INTO inspirations (user_id, content, images, tags, location, is_public, kind, original_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		post.UserID, post.Content, post.Images, post.Tags,
		post.Location, post.IsPublic, post.Kind, post.OriginalID,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, viewerID int64) (*Inspiration, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			EXISTS(SELECT 1 FROM inspiration_likes il WHERE il.inspiration_id = i.id AND il.user_id = $2) AS is_liked
		FROM inspirations i
		LEFT JOIN users u ON i.user_id = u.id
		WHERE i.id = $1`, postColumns)

	post, err := scanPost(r.db.QueryRowxContext(ctx, query, id, viewerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.NotFound, "inspiration not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get inspiration %d: %w", id, err)
	}
	return post, nil
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]Inspiration, int, error) {
	where := "WHERE i.is_public = TRUE"
	args := []interface{}{}
	n := 0

	next := func() string {
		n++
		return fmt.Sprintf("$%d", n)
	}

	if f.UserID != 0 {
		if f.OwnerView {
			where = "WHERE i.user_id = " + next()
		} else {
			where = "WHERE i.user_id = " + next() + " AND i.is_public = TRUE"
		}
		args = append(args, f.UserID)
	}

	if f.Tag != "" {
		tagJSON, err := jsonArray(f.Tag)
		if err != nil {
			return nil, 0, err
		}
		where += " AND i.tags @> " + next() + "::jsonb"
		args = append(args, tagJSON)
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM inspirations i %s`, where)
	if err := r.db.QueryRowxContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inspirations: %w", err)
	}

	viewerArg := next()
	args = append(args, f.ViewerID)
	limitArg, offsetArg := next(), next()
	args = append(args, f.Limit, f.Offset)

	query := fmt.Sprintf(`
		SELECT %s,
			EXISTS(SELECT 1 FROM inspiration_likes il WHERE il.inspiration_id = i.id AND il.user_id = %s) AS is_liked
		FROM inspirations i
		LEFT JOIN users u ON i.user_id = u.id
		%s
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT %s OFFSET %s`, postColumns, viewerArg, where, limitArg, offsetArg)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list inspirations: %w", err)
	}
	defer rows.Close()

	var posts []Inspiration
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan inspiration: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Comments, likes and share audit rows go with the post via
	// ON DELETE CASCADE; derived share posts survive with a dangling
	// original_id on purpose.
	var kind string
	var originalID *int64
	err = tx.QueryRowxContext(ctx,
		`DELETE FROM inspirations WHERE id = $1 RETURNING kind, original_id`, id,
	).Scan(&kind, &originalID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.New(apperrors.NotFound, "inspiration not found")
	}
	if err != nil {
		return fmt.Errorf("delete inspiration %d: %w", id, err)
	}

	// A derived share takes its audit row with it, so the root's counter
	// moves in the same transaction. A dangling original_id means the root
	// is already gone and there is nothing left to reconcile.
	if kind == KindShare && originalID != nil {
		if _, err := ledger.Decrement(ctx, tx, ledger.PostShares, *originalID); err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return err
			}
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) ToggleLike(ctx context.Context, postID, userID int64) (bool, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	// Insert-if-absent: the (inspiration, user) primary key guarantees at
	// most one row, so a racing duplicate like is a no-op here and never
	// reaches the counter.
	res, err := tx.ExecContext(ctx,
		`INSERT INTO inspiration_likes (inspiration_id, user_id, created_at)
		 VALUES ($1, $2, NOW()) ON CONFLICT DO NOTHING`,
		postID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("insert like: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}

	var liked bool
	var count int
	if inserted == 1 {
		liked = true
		count, err = ledger.Increment(ctx, tx, ledger.PostLikes, postID)
		if err != nil {
			return false, 0, err
		}
	} else {
		del, err := tx.ExecContext(ctx,
			`DELETE FROM inspiration_likes WHERE inspiration_id = $1 AND user_id = $2`,
			postID, userID)
		if err != nil {
			return false, 0, fmt.Errorf("delete like: %w", err)
		}

		deleted, err := del.RowsAffected()
		if err != nil {
			return false, 0, err
		}

		if deleted == 1 {
			count, err = ledger.Decrement(ctx, tx, ledger.PostLikes, postID)
			if err != nil {
				return false, 0, err
			}
		} else {
			// A concurrent unlike already removed the row; the counter was
			// adjusted by whoever deleted it, so only read it back.
			err = tx.QueryRowxContext(ctx,
				`SELECT likes_count FROM inspirations WHERE id = $1`, postID).Scan(&count)
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

func (r *PostgresRepository) CreateShare(ctx context.Context, derived *Inspiration, share *Share) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO inspirations (user_id, content, images, tags, location, is_public, kind, original_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		derived.UserID, derived.Content, derived.Images, derived.Tags,
		derived.Location, derived.IsPublic, derived.Kind, derived.OriginalID,
	).Scan(&derived.ID, &derived.CreatedAt, &derived.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert derived post: %w", err)
	}

	share.InspirationID = derived.ID
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO inspiration_shares (user_id, inspiration_id, original_id, quote, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at`,
		share.UserID, share.InspirationID, share.OriginalID, share.Quote,
	).Scan(&share.ID, &share.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert share record: %w", err)
	}

	if _, err := ledger.Increment(ctx, tx, ledger.PostShares, share.OriginalID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) ListShares(ctx context.Context, originalID int64, limit, offset int) ([]Share, int, error) {
	var total int
	err := r.db.QueryRowxContext(ctx,
		`SELECT COUNT(*) FROM inspiration_shares WHERE original_id = $1`, originalID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count shares: %w", err)
	}

	query := `
		SELECT s.id, s.user_id, s.inspiration_id, s.original_id, s.quote, s.created_at,
			COALESCE(u.username, '') AS username,
			COALESCE(u.avatar, '') AS avatar
		FROM inspiration_shares s
		LEFT JOIN users u ON s.user_id = u.id
		WHERE s.original_id = $1
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryxContext(ctx, query, originalID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	var shares []Share
	for rows.Next() {
		var s Share
		sharer := &Author{}
		err := rows.Scan(&s.ID, &s.UserID, &s.InspirationID, &s.OriginalID, &s.Quote, &s.CreatedAt,
			&sharer.Username, &sharer.Avatar)
		if err != nil {
			return nil, 0, fmt.Errorf("scan share: %w", err)
		}
		sharer.ID = s.UserID
		s.Sharer = sharer
		shares = append(shares, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return shares, total, nil
}

// rowScanner covers both *sqlx.Row and *sqlx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*Inspiration, error) {
	post := &Inspiration{Author: &Author{}}
	err := row.Scan(
		&post.ID, &post.UserID, &post.Content, &post.Images, &post.Tags,
		&post.Location, &post.IsPublic,
		&post.LikesCount, &post.CommentsCount, &post.SharesCount,
		&post.Kind, &post.OriginalID,
		&post.CreatedAt, &post.UpdatedAt,
		&post.Author.Username, &post.Author.Avatar, &post.Author.Bio,
		&post.IsLiked,
	)
	if err != nil {
		return nil, err
	}
	post.Author.ID = post.UserID
	return post, nil
}

func jsonArray(values ...string) (string, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
