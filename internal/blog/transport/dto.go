// Package transport defines the HTTP request/response shapes for the blog.
package transport

import (
	"time"

	"github.com/N0urDEV/Formalitys-sub001/internal/blog/repository"
)

// PostRequest creates or updates an article. Slug is optional; when empty it
// is derived from the title.
type PostRequest struct {
	Title         string  `json:"title" validate:"required,min=3,max=200"`
	Slug          string  `json:"slug" validate:"omitempty,max=200"`
	Excerpt       string  `json:"excerpt" validate:"required,max=500"`
	Content       string  `json:"content" validate:"required"`
	CoverImageKey *string `json:"coverImageKey" validate:"omitempty,max=512"`
}

// PublishRequest toggles a post's visibility.
type PublishRequest struct {
	Published *bool `json:"published" validate:"required"`
}

// PresignCoverRequest asks for a presigned cover image upload.
type PresignCoverRequest struct {
	FileName    string `json:"fileName" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

// PostSummaryResponse is a list entry: no body content.
type PostSummaryResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	AuthorName  string     `json:"authorName"`
	CoverURL    string     `json:"coverUrl,omitempty"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// PostResponse is the full article.
type PostResponse struct {
	PostSummaryResponse
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListResponse is a page of posts.
type ListResponse struct {
	Posts  []PostSummaryResponse `json:"posts"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

func SummaryFromPost(p repository.Post, coverURL string) PostSummaryResponse {
	return PostSummaryResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		AuthorName:  p.AuthorName,
		CoverURL:    coverURL,
		Published:   p.Published,
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
	}
}

func FromPost(p repository.Post, coverURL string) PostResponse {
	return PostResponse{
		PostSummaryResponse: SummaryFromPost(p, coverURL),
		Content:             p.Content,
		UpdatedAt:           p.UpdatedAt,
	}
}
