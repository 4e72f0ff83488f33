// Package booktest 提供图书仓储的内存实现,供应用层和HTTP层测试使用
//
// Store实现Repository、ImportProcedure和Transactor,
// Authors()和Sales()返回作者与销售记录仓储。事务通过快照实现:fn返回错误时
// 恢复到调用前的状态,嵌套调用的效果等同于SAVEPOINT。
package booktest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/xiebiao/relatorio/internal/domain/book"
)

// Store 内存仓储
type Store struct {
	mu      sync.Mutex
	books   map[uint]book.Book
	authors map[uint]book.Author
	sales   map[uint]book.Sale

	// 故障注入:非nil时对应操作直接返回该错误
	ListErr   error
	UpsertErr error
	DeleteErr error

	// ProcedureCalls 记录ImportLine收到的行
	ProcedureCalls []*book.ImportLine
}

// NewStore 创建空的内存仓储
func NewStore() *Store {
	return &Store{
		books:   make(map[uint]book.Book),
		authors: make(map[uint]book.Author),
		sales:   make(map[uint]book.Sale),
	}
}

var (
	_ book.Repository       = (*Store)(nil)
	_ book.AuthorRepository = authorRepo{}
	_ book.SaleRepository   = saleRepo{}
	_ book.ImportProcedure  = (*Store)(nil)
	_ book.Transactor       = (*Store)(nil)
)

// =========================================
// Transactor
// =========================================

type snapshot struct {
	books   map[uint]book.Book
	authors map[uint]book.Author
	sales   map[uint]book.Sale
}

func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	snap := snapshot{books: cloneMap(s.books), authors: cloneMap(s.authors), sales: cloneMap(s.sales)}
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.books, s.authors, s.sales = snap.books, snap.authors, snap.sales
		s.mu.Unlock()
		return err
	}
	return nil
}

// =========================================
// Repository
// =========================================

func (s *Store) List(_ context.Context, params book.ListParams) ([]*book.BookView, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	views := s.filtered(params.Search)
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].TotalSales != views[j].TotalSales {
			return views[i].TotalSales > views[j].TotalSales
		}
		return views[i].ID < views[j].ID
	})

	if params.Offset > 0 {
		if params.Offset >= len(views) {
			return []*book.BookView{}, nil
		}
		views = views[params.Offset:]
	}
	if params.Limit > 0 && len(views) > params.Limit {
		views = views[:params.Limit]
	}
	return views, nil
}

func (s *Store) Count(_ context.Context, search string) (int64, error) {
	if s.ListErr != nil {
		return 0, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.filtered(search))), nil
}

func (s *Store) FindByID(_ context.Context, id uint) (*book.BookView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return s.view(b), nil
}

func (s *Store) Upsert(_ context.Context, b *book.Book) error {
	if s.UpsertErr != nil {
		return s.UpsertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[b.ID] = *b
	return nil
}

func (s *Store) Delete(_ context.Context, id uint) (bool, error) {
	if s.DeleteErr != nil {
		return false, s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		return false, nil
	}
	for saleID, sale := range s.sales {
		if sale.BookID == id {
			delete(s.sales, saleID)
		}
	}
	delete(s.books, id)
	return true, nil
}

func (s *Store) NextID(_ context.Context) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nextKey(s.books), nil
}

func (s *Store) CreateWithNextID(_ context.Context, b *book.Book) error {
	if s.UpsertErr != nil {
		return s.UpsertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = nextKey(s.books)
	s.books[b.ID] = *b
	return nil
}

// =========================================
// AuthorRepository / SaleRepository
// =========================================

// Authors 作者仓储视图(方法名与图书仓储冲突,单独包装)
func (s *Store) Authors() book.AuthorRepository { return authorRepo{s} }

// Sales 销售记录仓储视图
func (s *Store) Sales() book.SaleRepository { return saleRepo{s} }

type authorRepo struct{ s *Store }

func (r authorRepo) Upsert(_ context.Context, a *book.Author) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.authors[a.ID] = *a
	return nil
}

func (r authorRepo) FindByName(_ context.Context, name string) (*book.Author, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var found *book.Author
	for _, a := range r.s.authors {
		if strings.EqualFold(a.Name, strings.TrimSpace(name)) && (found == nil || a.ID < found.ID) {
			a := a
			found = &a
		}
	}
	if found == nil {
		return nil, book.ErrAuthorNotFound
	}
	return found, nil
}

func (r authorRepo) NextID(_ context.Context) (uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return nextKey(r.s.authors), nil
}

func (r authorRepo) CreateWithNextID(_ context.Context, a *book.Author) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = nextKey(r.s.authors)
	r.s.authors[a.ID] = *a
	return nil
}

type saleRepo struct{ s *Store }

func (r saleRepo) Upsert(_ context.Context, sale *book.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sales[sale.ID] = *sale
	return nil
}

func (r saleRepo) NextID(_ context.Context) (uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return nextKey(r.s.sales), nil
}

// ImportLine 记录调用并按存储过程的语义写入三张表
func (s *Store) ImportLine(ctx context.Context, line *book.ImportLine) error {
	s.mu.Lock()
	s.ProcedureCalls = append(s.ProcedureCalls, line)
	s.mu.Unlock()

	if line.Author != nil {
		if err := s.Authors().Upsert(ctx, line.Author); err != nil {
			return err
		}
	}
	if err := s.Upsert(ctx, line.Book); err != nil {
		return err
	}
	if line.Sale != nil {
		return s.Sales().Upsert(ctx, line.Sale)
	}
	return nil
}

// =========================================
// 测试辅助
// =========================================

// SaleCount 返回销售记录条数
func (s *Store) SaleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sales)
}

// AuthorCount 返回作者条数
func (s *Store) AuthorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.authors)
}

// BookCount 返回图书条数
func (s *Store) BookCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books)
}

func (s *Store) filtered(search string) []*book.BookView {
	term := strings.ToLower(strings.TrimSpace(search))
	views := make([]*book.BookView, 0, len(s.books))
	for _, b := range s.books {
		if term != "" && !strings.Contains(strings.ToLower(b.Title), term) {
			continue
		}
		views = append(views, s.view(b))
	}
	return views
}

func (s *Store) view(b book.Book) *book.BookView {
	v := &book.BookView{
		ID:       b.ID,
		Title:    b.Title,
		Genre:    b.Genre,
		Synopsis: b.Synopsis,
		AuthorID: b.AuthorID,
	}
	if b.AuthorID != nil {
		if a, ok := s.authors[*b.AuthorID]; ok {
			v.AuthorName = a.Name
			v.AuthorCity = a.City
		}
	}
	for _, sale := range s.sales {
		if sale.BookID == b.ID {
			v.TotalSales += int64(sale.Quantity)
		}
	}
	return v
}

func cloneMap[V any](m map[uint]V) map[uint]V {
	out := make(map[uint]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func nextKey[V any](m map[uint]V) uint {
	var top uint
	for k := range m {
		if k > top {
			top = k
		}
	}
	return top + 1
}
