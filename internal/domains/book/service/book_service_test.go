package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"bookcatalog-backend/internal/domains/book/model"
	"bookcatalog-backend/internal/infrastructure/external"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache is a map-backed Cache for tests. It matches the glob
// semantics the service relies on: "books:list:*" means prefix match.
type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			delete(f.data, key)
		}
	}
	return nil
}

func (f *fakeCache) Ping(ctx context.Context) error { return nil }

func (f *fakeCache) Close() error { return nil }

type fakeRepo struct {
	books     map[int]model.Book
	nextID    int
	getCalls  int
	listCalls int
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{books: map[int]model.Book{}, nextID: 1}
}

func (f *fakeRepo) GetByID(ctx context.Context, id int) (*model.Book, error) {
	f.getCalls++
	book, ok := f.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	return &book, nil
}

func (f *fakeRepo) List(ctx context.Context, filter model.Filter) ([]model.Book, error) {
	f.listCalls++
	out := []model.Book{}
	for _, book := range f.books {
		if filter.Author != "" && book.Author != filter.Author {
			continue
		}
		if filter.Genre != "" && book.Genre != filter.Genre {
			continue
		}
		if filter.YearPublication != nil && book.YearPublication != *filter.YearPublication {
			continue
		}
		out = append(out, book)
	}
	return out, nil
}

func (f *fakeRepo) Create(ctx context.Context, req model.CreateBookRequest) (*model.Book, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	now := time.Now()
	book := model.Book{
		BookID:          f.nextID,
		Title:           req.Title,
		Author:          req.Author,
		YearPublication: req.YearPublication,
		Genre:           req.Genre,
		NumberPages:     req.NumberPages,
		ISBN:            req.ISBN,
		Accessibility:   req.AccessibilityOrDefault(),
		Description:     req.Description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	f.books[book.BookID] = book
	f.nextID++
	return &book, nil
}

func (f *fakeRepo) Update(ctx context.Context, id int, req model.UpdateBookRequest) (*model.Book, error) {
	book, ok := f.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.NumberPages != nil {
		book.NumberPages = *req.NumberPages
	}
	book.UpdatedAt = time.Now()
	f.books[id] = book
	return &book, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int) (*model.Book, error) {
	book, ok := f.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	delete(f.books, id)
	return &book, nil
}

type fakeEnrichment struct {
	calls  int
	result *external.EnrichmentResult
	err    error
}

func (f *fakeEnrichment) Lookup(ctx context.Context, title string) (*external.EnrichmentResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &external.EnrichmentResult{}, nil
}

type fakeMirror struct {
	calls int
	err   error
}

func (f *fakeMirror) Save(ctx context.Context, payload interface{}) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "bin-1", nil
}

type fakeFileMirror struct {
	records []interface{}
	err     error
}

func (f *fakeFileMirror) Append(record interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

func validCreate() model.CreateBookRequest {
	return model.CreateBookRequest{
		Title:           "Dune",
		Author:          "Frank Herbert",
		YearPublication: 1965,
		Genre:           "Science Fiction",
		NumberPages:     412,
	}
}

func TestCreateBookPersistsAndRunsSideEffects(t *testing.T) {
	repo := newFakeRepo()
	enrichment := &fakeEnrichment{}
	mirror := &fakeMirror{}
	fileMirror := &fakeFileMirror{}
	svc := NewService(repo, newFakeCache(), enrichment, mirror, fileMirror)

	book, err := svc.CreateBook(context.Background(), validCreate())
	require.NoError(t, err)

	assert.Equal(t, 1, book.BookID)
	assert.True(t, book.Accessibility)
	assert.Equal(t, 1, enrichment.calls)
	assert.Equal(t, 1, mirror.calls)
	assert.Len(t, fileMirror.records, 1)
}

func TestCreateBookSurvivesSideEffectFailures(t *testing.T) {
	repo := newFakeRepo()
	enrichment := &fakeEnrichment{err: errors.New("openlibrary down")}
	mirror := &fakeMirror{err: errors.New("jsonbin down")}
	fileMirror := &fakeFileMirror{err: errors.New("disk full")}
	svc := NewService(repo, newFakeCache(), enrichment, mirror, fileMirror)

	book, err := svc.CreateBook(context.Background(), validCreate())
	require.NoError(t, err, "side effect failures must not fail the write")
	assert.Equal(t, "Dune", book.Title)
	assert.Len(t, repo.books, 1)
}

func TestCreateBookWorksWithoutOptionalClients(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeCache(), nil, nil, nil)

	_, err := svc.CreateBook(context.Background(), validCreate())
	require.NoError(t, err)
}

func TestCreateBookRejectsInvalidRequest(t *testing.T) {
	repo := newFakeRepo()
	enrichment := &fakeEnrichment{}
	svc := NewService(repo, newFakeCache(), enrichment, nil, nil)

	req := validCreate()
	req.Genre = "Cooking"

	_, err := svc.CreateBook(context.Background(), req)
	require.Error(t, err)
	assert.Empty(t, repo.books, "invalid requests must not reach the store")
	assert.Zero(t, enrichment.calls)
}

func TestCreateBookFailsWhenPersistenceFails(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = model.ErrISBNAlreadyExists
	enrichment := &fakeEnrichment{}
	svc := NewService(repo, newFakeCache(), enrichment, nil, nil)

	_, err := svc.CreateBook(context.Background(), validCreate())
	assert.ErrorIs(t, err, model.ErrISBNAlreadyExists)
	assert.Zero(t, enrichment.calls, "side effects only run after a successful write")
}

func TestCreateBookInvalidatesListCache(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := NewService(repo, cache, nil, nil, nil)

	// Prime a list entry, then write.
	_, err := svc.ListBooks(context.Background(), model.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	_, err = svc.CreateBook(context.Background(), validCreate())
	require.NoError(t, err)

	books, err := svc.ListBooks(context.Background(), model.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls, "stale list entries must be dropped after a write")
	assert.Len(t, books, 1)
}

func TestGetBookUsesCacheOnRepeat(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, newFakeCache(), nil, nil, nil)

	created, err := svc.CreateBook(context.Background(), validCreate())
	require.NoError(t, err)

	first, err := svc.GetBook(context.Background(), created.BookID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.getCalls)

	second, err := svc.GetBook(context.Background(), created.BookID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.getCalls, "second read must come from cache")
	assert.Equal(t, first.Title, second.Title)
}

func TestGetBookNotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeCache(), nil, nil, nil)

	_, err := svc.GetBook(context.Background(), 99)
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestListBooksCachesPerFilter(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, newFakeCache(), nil, nil, nil)

	_, err := svc.ListBooks(context.Background(), model.Filter{Author: "Frank Herbert"})
	require.NoError(t, err)
	_, err = svc.ListBooks(context.Background(), model.Filter{Author: " Frank  Herbert "})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls, "equivalent filters share one cache entry")

	_, err = svc.ListBooks(context.Background(), model.Filter{Author: "Ursula K. Le Guin"})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestUpdateBookInvalidatesCaches(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := NewService(repo, cache, nil, nil, nil)

	created, err := svc.CreateBook(context.Background(), validCreate())
	require.NoError(t, err)

	_, err = svc.GetBook(context.Background(), created.BookID)
	require.NoError(t, err)

	newTitle := "Dune Messiah"
	_, err = svc.UpdateBook(context.Background(), created.BookID, model.UpdateBookRequest{Title: &newTitle})
	require.NoError(t, err)

	got, err := svc.GetBook(context.Background(), created.BookID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", got.Title, "reads after update must not see the stale entry")
}

func TestUpdateBookRejectsEmptyRequest(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeCache(), nil, nil, nil)

	_, err := svc.UpdateBook(context.Background(), 1, model.UpdateBookRequest{})
	assert.ErrorIs(t, err, model.ErrEmptyUpdate)
}

func TestDeleteBookReturnsSnapshotAndInvalidates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, newFakeCache(), nil, nil, nil)

	created, err := svc.CreateBook(context.Background(), validCreate())
	require.NoError(t, err)

	_, err = svc.GetBook(context.Background(), created.BookID)
	require.NoError(t, err)

	deleted, err := svc.DeleteBook(context.Background(), created.BookID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", deleted.Title)

	_, err = svc.GetBook(context.Background(), created.BookID)
	assert.ErrorIs(t, err, model.ErrBookNotFound, "deleted books must not linger in cache")
}
