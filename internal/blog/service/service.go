// Package service implements blog post management and public reading.
package service

import (
	"context"
	"strings"

	"github.com/N0urDEV/Formalitys-sub001/internal/adapters/storage"
	"github.com/N0urDEV/Formalitys-sub001/internal/blog/repository"
	"github.com/N0urDEV/Formalitys-sub001/platform/apperr"
	"github.com/N0urDEV/Formalitys-sub001/platform/logger"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type Service struct {
	repo    *repository.Repository
	storage storage.StorageService
	bucket  string
	log     *logger.Logger
}

func New(repo *repository.Repository, store storage.StorageService, imagesBucket string, log *logger.Logger) *Service {
	return &Service{repo: repo, storage: store, bucket: imagesBucket, log: log}
}

// PostInput carries the editable fields of a post. Slug is derived from the
// title when left empty.
type PostInput struct {
	Title         string
	Slug          string
	Excerpt       string
	Content       string
	CoverImageKey *string
}

func (in PostInput) slugOrDerived() string {
	if s := strings.TrimSpace(in.Slug); s != "" {
		return slug.Make(s)
	}
	return slug.Make(in.Title)
}

func (s *Service) CreatePost(ctx context.Context, authorID uuid.UUID, in PostInput) (repository.Post, error) {
	postSlug := in.slugOrDerived()
	if postSlug == "" {
		return repository.Post{}, apperr.Validation("title does not produce a usable slug")
	}

	post, err := s.repo.Create(ctx, repository.Post{
		AuthorID:      authorID,
		Title:         in.Title,
		Slug:          postSlug,
		Excerpt:       in.Excerpt,
		Content:       in.Content,
		CoverImageKey: in.CoverImageKey,
	})
	if err != nil {
		return repository.Post{}, err
	}
	s.log.Info("blog post created", "post_id", post.ID, "slug", post.Slug)
	return post, nil
}

func (s *Service) UpdatePost(ctx context.Context, id uuid.UUID, in PostInput) (repository.Post, error) {
	postSlug := in.slugOrDerived()
	if postSlug == "" {
		return repository.Post{}, apperr.Validation("title does not produce a usable slug")
	}

	return s.repo.Update(ctx, repository.Post{
		ID:            id,
		Title:         in.Title,
		Slug:          postSlug,
		Excerpt:       in.Excerpt,
		Content:       in.Content,
		CoverImageKey: in.CoverImageKey,
	})
}

func (s *Service) SetPublished(ctx context.Context, id uuid.UUID, published bool) (repository.Post, error) {
	post, err := s.repo.SetPublished(ctx, id, published)
	if err != nil {
		return repository.Post{}, err
	}
	s.log.Info("blog post publication changed", "post_id", id, "published", published)
	return post, nil
}

func (s *Service) DeletePost(ctx context.Context, id uuid.UUID) error {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if post.CoverImageKey != nil {
		if err := s.storage.DeleteObject(ctx, s.bucket, *post.CoverImageKey); err != nil {
			s.log.Warn("could not delete cover image", "file_key", *post.CoverImageKey, "error", err)
		}
	}
	return nil
}

// GetPost returns any post by id (admin view, drafts included).
func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (repository.Post, error) {
	return s.repo.GetByID(ctx, id)
}

// GetPublished resolves a public article by slug.
func (s *Service) GetPublished(ctx context.Context, postSlug string) (repository.Post, error) {
	return s.repo.GetPublishedBySlug(ctx, postSlug)
}

// List returns a page of posts; drafts are included only for admins.
func (s *Service) List(ctx context.Context, includeDrafts bool, limit, offset int) ([]repository.Post, int, error) {
	return s.repo.List(ctx, !includeDrafts, limit, offset)
}

// PresignCoverUpload issues a presigned PUT for a cover image. Only image
// content types are accepted.
func (s *Service) PresignCoverUpload(ctx context.Context, fileName, contentType string, sizeBytes int64) (*storage.PresignedURL, error) {
	if !storage.IsImageContentType(contentType) {
		return nil, apperr.Validation("cover must be an image")
	}
	url, err := s.storage.GenerateUploadURL(ctx, s.bucket, "covers", fileName, contentType, sizeBytes)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "upload rejected", err)
	}
	return url, nil
}

// CoverURL issues a presigned GET for a post's cover image, or "" when the
// post has none.
func (s *Service) CoverURL(ctx context.Context, post repository.Post) string {
	if post.CoverImageKey == nil {
		return ""
	}
	url, err := s.storage.GenerateDownloadURL(ctx, s.bucket, *post.CoverImageKey)
	if err != nil {
		s.log.Warn("could not presign cover image", "file_key", *post.CoverImageKey, "error", err)
		return ""
	}
	return url.URL
}
