package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookcatalog-backend/internal/domains/book/model"
	"bookcatalog-backend/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookColumns = `book_id, title, author, year_publication, genre, number_pages,
	isbn, accessibility, description, created_at, updated_at`

const uniqueViolation = "23505"

// postgresRepository - raw SQL with pgxpool.
type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) BookRepository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) GetByID(ctx context.Context, id int) (*model.Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE book_id = $1`, bookColumns)

	book, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return book, nil
}

func (r *postgresRepository) List(ctx context.Context, filter model.Filter) ([]model.Book, error) {
	whereClause, args := buildWhereClause(filter)

	query := fmt.Sprintf(`SELECT %s FROM books`, bookColumns)
	if whereClause != "" {
		query += " WHERE " + whereClause
	}
	query += " ORDER BY book_id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books query failed: %w", err)
	}

	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return nil, fmt.Errorf("collect rows failed: %w", err)
	}

	return books, nil
}

func (r *postgresRepository) Create(ctx context.Context, req model.CreateBookRequest) (*model.Book, error) {
	query := fmt.Sprintf(`
		INSERT INTO books (title, author, year_publication, genre, number_pages,
			isbn, accessibility, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`, bookColumns)

	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Book, error) {
		book, err := scanBook(tx.QueryRow(ctx, query,
			req.Title, req.Author, req.YearPublication, req.Genre,
			req.NumberPages, req.ISBN, req.AccessibilityOrDefault(), req.Description,
		))
		if err != nil {
			if isUniqueViolation(err) {
				return nil, model.ErrISBNAlreadyExists
			}
			return nil, fmt.Errorf("failed to insert book: %w", err)
		}
		return book, nil
	})
}

func (r *postgresRepository) Update(ctx context.Context, id int, req model.UpdateBookRequest) (*model.Book, error) {
	columns, values := req.Fields()
	if len(columns) == 0 {
		return nil, model.ErrEmptyUpdate
	}

	setClauses := make([]string, 0, len(columns)+1)
	for i, col := range columns {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i+1))
	}
	setClauses = append(setClauses, "updated_at = now()")

	query := fmt.Sprintf(`UPDATE books SET %s WHERE book_id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), len(columns)+1, bookColumns)
	args := append(values, id)

	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Book, error) {
		book, err := scanBook(tx.QueryRow(ctx, query, args...))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		if err != nil {
			if isUniqueViolation(err) {
				return nil, model.ErrISBNAlreadyExists
			}
			return nil, fmt.Errorf("failed to update book: %w", err)
		}
		return book, nil
	})
}

func (r *postgresRepository) Delete(ctx context.Context, id int) (*model.Book, error) {
	query := fmt.Sprintf(`DELETE FROM books WHERE book_id = $1 RETURNING %s`, bookColumns)

	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Book, error) {
		book, err := scanBook(tx.QueryRow(ctx, query, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to delete book: %w", err)
		}
		return book, nil
	})
}

// buildWhereClause constructs the equality predicates for a list filter.
// Absent values impose no constraint; predicates combine with AND.
func buildWhereClause(filter model.Filter) (string, []interface{}) {
	filter = filter.Normalize()

	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.Author != "" {
		conditions = append(conditions, fmt.Sprintf("author = $%d", argIndex))
		args = append(args, filter.Author)
		argIndex++
	}
	if filter.Genre != "" {
		conditions = append(conditions, fmt.Sprintf("genre = $%d", argIndex))
		args = append(args, filter.Genre)
		argIndex++
	}
	if filter.YearPublication != nil {
		conditions = append(conditions, fmt.Sprintf("year_publication = $%d", argIndex))
		args = append(args, *filter.YearPublication)
		argIndex++
	}

	return strings.Join(conditions, " AND "), args
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.BookID, &b.Title, &b.Author, &b.YearPublication, &b.Genre,
		&b.NumberPages, &b.ISBN, &b.Accessibility, &b.Description,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
