package service

import (
	"context"

	"bookcatalog-backend/internal/domains/book/model"
	"bookcatalog-backend/internal/infrastructure/external"
)

// ServiceInterface is the catalog's business surface consumed by handlers.
type ServiceInterface interface {
	GetBook(ctx context.Context, id int) (*model.Book, error)
	ListBooks(ctx context.Context, filter model.Filter) ([]model.Book, error)
	CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.Book, error)
	UpdateBook(ctx context.Context, id int, req model.UpdateBookRequest) (*model.Book, error)
	DeleteBook(ctx context.Context, id int) (*model.Book, error)
}

// EnrichmentClient fetches supplementary metadata for a title.
type EnrichmentClient interface {
	Lookup(ctx context.Context, title string) (*external.EnrichmentResult, error)
}

// MirrorClient copies a created record to a remote store.
type MirrorClient interface {
	Save(ctx context.Context, payload interface{}) (string, error)
}

// FileMirror appends a created record to a local sidecar file.
type FileMirror interface {
	Append(record interface{}) error
}
