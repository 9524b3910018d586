package repository

import (
	"context"

	"bookcatalog-backend/internal/domains/book/model"
)

// BookRepository owns transactional CRUD for books against the primary
// store.
type BookRepository interface {
	GetByID(ctx context.Context, id int) (*model.Book, error)
	List(ctx context.Context, filter model.Filter) ([]model.Book, error)
	Create(ctx context.Context, req model.CreateBookRequest) (*model.Book, error)
	// Update applies only the fields present in req. Returns
	// model.ErrBookNotFound when id does not exist.
	Update(ctx context.Context, id int, req model.UpdateBookRequest) (*model.Book, error)
	// Delete removes the row and returns the pre-deletion snapshot.
	Delete(ctx context.Context, id int) (*model.Book, error)
}
