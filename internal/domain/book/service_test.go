package book_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/relatorio/internal/domain/book"
	"github.com/xiebiao/relatorio/internal/domain/book/booktest"
)

func newService() (book.Service, *booktest.Store) {
	store := booktest.NewStore()
	return book.NewService(store, store.Authors(), store), store
}

func TestCreateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("空表分配ID=1并按姓名创建作者", func(t *testing.T) {
		svc, store := newService()

		view, err := svc.CreateBook(ctx, book.NewBook(0, "Dom Casmurro", "", "", nil), "Machado de Assis")
		require.NoError(t, err)

		assert.Equal(t, uint(1), view.ID)
		assert.Equal(t, "Dom Casmurro", view.Title)
		assert.Equal(t, "Machado de Assis", view.AuthorName)
		assert.Equal(t, 1, store.AuthorCount())
	})

	t.Run("分配MAX+1", func(t *testing.T) {
		svc, _ := newService()
		require.NoError(t, svc.SaveBook(ctx, book.NewBook(7, "Iracema", "", "", nil)))

		view, err := svc.CreateBook(ctx, book.NewBook(0, "O Guarani", "", "", nil), "")
		require.NoError(t, err)
		assert.Equal(t, uint(8), view.ID)
	})

	t.Run("同名作者复用", func(t *testing.T) {
		svc, store := newService()

		first, err := svc.CreateBook(ctx, book.NewBook(0, "Dom Casmurro", "", "", nil), "Machado de Assis")
		require.NoError(t, err)
		second, err := svc.CreateBook(ctx, book.NewBook(0, "Helena", "", "", nil), "machado de assis")
		require.NoError(t, err)

		assert.Equal(t, *first.AuthorID, *second.AuthorID)
		assert.Equal(t, 1, store.AuthorCount())
	})

	t.Run("写入失败时不留下作者", func(t *testing.T) {
		svc, store := newService()
		store.UpsertErr = errors.New("falha de escrita")

		_, err := svc.CreateBook(ctx, book.NewBook(0, "Dom Casmurro", "", "", nil), "Machado de Assis")
		require.Error(t, err)
		assert.Equal(t, 0, store.AuthorCount())
	})
}

// interleavedAuthors 在第一次新建作者之前插入另一个请求
type interleavedAuthors struct {
	book.AuthorRepository
	before func()
}

func (r *interleavedAuthors) CreateWithNextID(ctx context.Context, a *book.Author) error {
	if r.before != nil {
		before := r.before
		r.before = nil
		before()
	}
	return r.AuthorRepository.CreateWithNextID(ctx, a)
}

func TestCreateBook_ConcurrentNewAuthors(t *testing.T) {
	ctx := context.Background()
	store := booktest.NewStore()
	other := book.NewService(store, store.Authors(), store)

	authors := &interleavedAuthors{AuthorRepository: store.Authors()}
	authors.before = func() {
		_, err := other.CreateBook(ctx, book.NewBook(0, "1984", "", "", nil), "George Orwell")
		require.NoError(t, err)
	}
	svc := book.NewService(store, authors, store)

	first, err := svc.CreateBook(ctx, book.NewBook(0, "Dom Casmurro", "", "", nil), "Machado de Assis")
	require.NoError(t, err)

	assert.Equal(t, 2, store.AuthorCount(), "两个新作者各占一行")
	assert.Equal(t, "Machado de Assis", first.AuthorName)

	orwell, err := store.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "1984", orwell.Title)
	assert.Equal(t, "George Orwell", orwell.AuthorName, "先提交的作者不能被改名")
	assert.NotEqual(t, *orwell.AuthorID, *first.AuthorID)
}

func TestUpdateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("不存在时返回NotFound且不写入", func(t *testing.T) {
		svc, store := newService()

		_, err := svc.UpdateBook(ctx, 42, book.NewBook(0, "Fantasma", "", "", nil), "")
		assert.ErrorIs(t, err, book.ErrBookNotFound)
		assert.Equal(t, 0, store.BookCount())
	})

	t.Run("覆盖字段并以路径ID为准", func(t *testing.T) {
		svc, _ := newService()
		require.NoError(t, svc.SaveBook(ctx, book.NewBook(3, "Antigo", "Drama", "x", nil)))

		view, err := svc.UpdateBook(ctx, 3, book.NewBook(99, "Novo", "Romance", "", nil), "Jorge Amado")
		require.NoError(t, err)

		assert.Equal(t, uint(3), view.ID)
		assert.Equal(t, "Novo", view.Title)
		assert.Equal(t, "Romance", view.Genre)
		assert.Equal(t, "", view.Synopsis)
		assert.Equal(t, "Jorge Amado", view.AuthorName)
	})
}

func TestDeleteBook(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()

	require.NoError(t, svc.SaveBook(ctx, book.NewBook(1, "Capitães da Areia", "", "", nil)))
	require.NoError(t, store.Sales().Upsert(ctx, &book.Sale{ID: 1, City: "Salvador", Quantity: 5, BookID: 1}))

	require.NoError(t, svc.DeleteBook(ctx, 1))
	assert.Equal(t, 0, store.SaleCount())

	_, err := svc.GetBook(ctx, 1)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	assert.ErrorIs(t, svc.DeleteBook(ctx, 1), book.ErrBookNotFound)
}

func TestListBooks(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()

	for i, title := range []string{"Dom Casmurro", "Memórias Póstumas", "Quincas Borba"} {
		require.NoError(t, svc.SaveBook(ctx, book.NewBook(uint(i+1), title, "", "", nil)))
	}
	require.NoError(t, store.Sales().Upsert(ctx, &book.Sale{ID: 1, Quantity: 10, BookID: 3}))

	books, total, err := svc.ListBooks(ctx, book.ListParams{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, books, 2)
	assert.Equal(t, uint(3), books[0].ID, "销量最高的排在最前")

	books, total, err = svc.ListBooks(ctx, book.ListParams{Search: "  CASMURRO "})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, books, 1)
	assert.Equal(t, "Dom Casmurro", books[0].Title)
}
