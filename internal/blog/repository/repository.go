// Package repository provides PostgreSQL persistence for blog posts.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/N0urDEV/Formalitys-sub001/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Post is a blog article. Unpublished posts are only visible to admins.
type Post struct {
	ID            uuid.UUID
	AuthorID      uuid.UUID
	AuthorName    string
	Title         string
	Slug          string
	Excerpt       string
	Content       string
	CoverImageKey *string
	Published     bool
	PublishedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const postColumns = `p.id, p.author_id, u.name, p.title, p.slug, p.excerpt, p.content,
	p.cover_image_key, p.published, p.published_at, p.created_at, p.updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.Title, &p.Slug, &p.Excerpt,
		&p.Content, &p.CoverImageKey, &p.Published, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, apperr.NotFound("post not found")
	}
	if err != nil {
		return Post{}, apperr.Wrap(apperr.KindInternal, "scan post", err)
	}
	return p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts a new post as an unpublished draft.
func (r *Repository) Create(ctx context.Context, p Post) (Post, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO blog_posts (author_id, title, slug, excerpt, content, cover_image_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		p.AuthorID, p.Title, p.Slug, p.Excerpt, p.Content, p.CoverImageKey).Scan(&id)
	if isUniqueViolation(err) {
		return Post{}, apperr.Conflict("a post with this slug already exists")
	}
	if err != nil {
		return Post{}, apperr.Wrap(apperr.KindInternal, "create post", err)
	}
	return r.GetByID(ctx, id)
}

// Update rewrites a post's editable fields.
func (r *Repository) Update(ctx context.Context, p Post) (Post, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE blog_posts
		SET title = $2, slug = $3, excerpt = $4, content = $5, cover_image_key = $6, updated_at = now()
		WHERE id = $1`,
		p.ID, p.Title, p.Slug, p.Excerpt, p.Content, p.CoverImageKey)
	if isUniqueViolation(err) {
		return Post{}, apperr.Conflict("a post with this slug already exists")
	}
	if err != nil {
		return Post{}, apperr.Wrap(apperr.KindInternal, "update post", err)
	}
	if tag.RowsAffected() == 0 {
		return Post{}, apperr.NotFound("post not found")
	}
	return r.GetByID(ctx, p.ID)
}

// SetPublished flips the published flag; published_at is set on first publish.
func (r *Repository) SetPublished(ctx context.Context, id uuid.UUID, published bool) (Post, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE blog_posts
		SET published = $2,
		    published_at = CASE WHEN $2 AND published_at IS NULL THEN now() ELSE published_at END,
		    updated_at = now()
		WHERE id = $1`, id, published)
	if err != nil {
		return Post{}, apperr.Wrap(apperr.KindInternal, "publish post", err)
	}
	if tag.RowsAffected() == 0 {
		return Post{}, apperr.NotFound("post not found")
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "delete post", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("post not found")
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Post, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+postColumns+`
		FROM blog_posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1`, id)
	return scanPost(row)
}

// GetPublishedBySlug resolves a public article by its slug.
func (r *Repository) GetPublishedBySlug(ctx context.Context, slug string) (Post, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+postColumns+`
		FROM blog_posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.slug = $1 AND p.published`, slug)
	return scanPost(row)
}

// List returns posts newest first. When publishedOnly is false (admin view)
// drafts are included.
func (r *Repository) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]Post, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	filter := ""
	if publishedOnly {
		filter = "WHERE p.published"
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM blog_posts p `+filter).Scan(&total); err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "count posts", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+postColumns+`
		FROM blog_posts p
		JOIN users u ON u.id = p.author_id
		`+filter+`
		ORDER BY coalesce(p.published_at, p.created_at) DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "list posts", err)
	}
	defer rows.Close()

	var out []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}
