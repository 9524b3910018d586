package service

import (
	"context"
	"fmt"

	"bookcatalog-backend/internal/domains/book/model"
	"bookcatalog-backend/internal/domains/book/repository"
	"bookcatalog-backend/pkg/cache"
	"bookcatalog-backend/pkg/logger"
)

// BookService - implements ServiceInterface.
//
// Persistence is the only mandatory step of a write. Enrichment, the
// remote mirror and the file sidecar are best-effort: their failures are
// logged and swallowed so a flaky dependency never fails a catalog write.
type BookService struct {
	repo       repository.BookRepository
	cache      cache.Cache
	enrichment EnrichmentClient
	mirror     MirrorClient
	fileMirror FileMirror
}

// NewService - constructor with DI. enrichment, mirror and fileMirror may
// be nil; the corresponding step is skipped.
func NewService(
	repo repository.BookRepository,
	cache cache.Cache,
	enrichment EnrichmentClient,
	mirror MirrorClient,
	fileMirror FileMirror,
) ServiceInterface {
	return &BookService{
		repo:       repo,
		cache:      cache,
		enrichment: enrichment,
		mirror:     mirror,
		fileMirror: fileMirror,
	}
}

func (s *BookService) GetBook(ctx context.Context, id int) (*model.Book, error) {
	cacheKey := model.BookDetailCacheKey(id)

	var cached model.Book
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		logger.Warn("cache read failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
	}
	if found {
		return &cached, nil
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, book, 0); err != nil {
		logger.Warn("cache write failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
	}

	return book, nil
}

func (s *BookService) ListBooks(ctx context.Context, filter model.Filter) ([]model.Book, error) {
	filter = filter.Normalize()
	cacheKey := model.BookListCacheKey(filter)

	var cached []model.Book
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		logger.Warn("cache read failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
	}
	if found {
		return cached, nil
	}

	books, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list books error: %w", err)
	}

	if err := s.cache.Set(ctx, cacheKey, books, 0); err != nil {
		logger.Warn("cache write failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
	}

	return books, nil
}

func (s *BookService) CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	book, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.enrichBook(ctx, book)
	s.mirrorBook(ctx, book)

	s.invalidateLists(ctx)

	return book, nil
}

func (s *BookService) UpdateBook(ctx context.Context, id int, req model.UpdateBookRequest) (*model.Book, error) {
	if req.IsEmpty() {
		return nil, model.ErrEmptyUpdate
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	book, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.invalidateBook(ctx, id)

	return book, nil
}

func (s *BookService) DeleteBook(ctx context.Context, id int) (*model.Book, error) {
	book, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidateBook(ctx, id)

	return book, nil
}

// enrichBook fetches external metadata for audit logging. The result is
// not persisted; the stored record stays exactly what the client sent.
func (s *BookService) enrichBook(ctx context.Context, book *model.Book) {
	if s.enrichment == nil {
		return
	}

	result, err := s.enrichment.Lookup(ctx, book.Title)
	if err != nil {
		logger.Warn("enrichment lookup failed", map[string]interface{}{
			"book_id": book.BookID,
			"title":   book.Title,
			"error":   err.Error(),
		})
		return
	}

	fields := map[string]interface{}{"book_id": book.BookID, "title": book.Title}
	if result.Rating != nil {
		fields["rating"] = *result.Rating
	}
	if result.CoverURL != nil {
		fields["cover_url"] = *result.CoverURL
	}
	if result.Description != "" {
		fields["has_description"] = true
	}
	logger.Info("enrichment lookup completed", fields)
}

func (s *BookService) mirrorBook(ctx context.Context, book *model.Book) {
	if s.mirror != nil {
		binID, err := s.mirror.Save(ctx, book)
		if err != nil {
			logger.Warn("remote mirror failed", map[string]interface{}{
				"book_id": book.BookID,
				"error":   err.Error(),
			})
		} else {
			logger.Info("book mirrored", map[string]interface{}{"book_id": book.BookID, "bin_id": binID})
		}
	}

	if s.fileMirror != nil {
		if err := s.fileMirror.Append(book); err != nil {
			logger.Warn("file mirror failed", map[string]interface{}{
				"book_id": book.BookID,
				"error":   err.Error(),
			})
		}
	}
}

func (s *BookService) invalidateBook(ctx context.Context, id int) {
	if err := s.cache.Delete(ctx, model.BookDetailCacheKey(id)); err != nil {
		logger.Warn("cache invalidation failed", map[string]interface{}{"book_id": id, "error": err.Error()})
	}
	s.invalidateLists(ctx)
}

func (s *BookService) invalidateLists(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, model.ListCachePattern); err != nil {
		logger.Warn("cache invalidation failed", map[string]interface{}{
			"pattern": model.ListCachePattern,
			"error":   err.Error(),
		})
	}
}
