package book

import (
	"context"
	"errors"
	"strings"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务封装跨实体的业务规则(作者按姓名解析、先查存在再更新)
// 2. 不依赖具体的Repository实现(依赖倒置)
type Service interface {
	// ListBooks 分页查询,返回当前页和总数
	ListBooks(ctx context.Context, params ListParams) ([]*BookView, int64, error)

	// GetBook 根据ID获取图书
	GetBook(ctx context.Context, id uint) (*BookView, error)

	// SaveBook 按ID直接upsert(ID必须已指定)
	SaveBook(ctx context.Context, book *Book) error

	// CreateBook 新建图书
	// 业务规则:
	// - 只给了作者姓名时按姓名查找作者,不存在则新建
	// - ID为0时分配MAX+1(与插入在同一事务中),否则按ID upsert
	CreateBook(ctx context.Context, book *Book, authorName string) (*BookView, error)

	// UpdateBook 更新图书
	// 业务规则:先确认图书存在,不存在返回ErrBookNotFound且不写入
	UpdateBook(ctx context.Context, id uint, book *Book, authorName string) (*BookView, error)

	// DeleteBook 删除图书及其销售记录,不存在返回ErrBookNotFound
	DeleteBook(ctx context.Context, id uint) error

	// ResolveAuthor 按姓名查找作者,不存在则新建,返回作者ID
	ResolveAuthor(ctx context.Context, name string) (uint, error)
}

// service 领域服务实现
type service struct {
	repo    Repository
	authors AuthorRepository
	tx      Transactor
}

// NewService 创建图书领域服务
func NewService(repo Repository, authors AuthorRepository, tx Transactor) Service {
	return &service{repo: repo, authors: authors, tx: tx}
}

// ListBooks 分页查询
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*BookView, int64, error) {
	params.Search = strings.TrimSpace(params.Search)

	books, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, params.Search)
	if err != nil {
		return nil, 0, err
	}

	return books, total, nil
}

// GetBook 根据ID获取图书
func (s *service) GetBook(ctx context.Context, id uint) (*BookView, error) {
	return s.repo.FindByID(ctx, id)
}

// SaveBook 直接upsert
func (s *service) SaveBook(ctx context.Context, book *Book) error {
	return s.repo.Upsert(ctx, book)
}

// CreateBook 新建图书
func (s *service) CreateBook(ctx context.Context, book *Book, authorName string) (*BookView, error) {
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		// 1. 解析作者
		if err := s.linkAuthor(ctx, book, authorName); err != nil {
			return err
		}

		// 2. 写入(未指定ID时原子分配)
		if book.HasID() {
			return s.repo.Upsert(ctx, book)
		}
		return s.repo.CreateWithNextID(ctx, book)
	})
	if err != nil {
		return nil, err
	}

	// 3. 读回存储后的结果
	return s.repo.FindByID(ctx, book.ID)
}

// UpdateBook 更新图书
func (s *service) UpdateBook(ctx context.Context, id uint, book *Book, authorName string) (*BookView, error) {
	// 1. 先确认存在(upsert本身会插入新行,必须在写之前判断)
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	// 2. 路径参数优先于请求体中的ID
	book.ID = id

	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.linkAuthor(ctx, book, authorName); err != nil {
			return err
		}
		return s.repo.Upsert(ctx, book)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, id)
}

// DeleteBook 删除图书
func (s *service) DeleteBook(ctx context.Context, id uint) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrBookNotFound
	}
	return nil
}

// ResolveAuthor 按姓名查找或新建作者
func (s *service) ResolveAuthor(ctx context.Context, name string) (uint, error) {
	name = strings.TrimSpace(name)

	author, err := s.authors.FindByName(ctx, name)
	if err == nil {
		return author.ID, nil
	}
	if !errors.Is(err, ErrAuthorNotFound) {
		return 0, err
	}

	// 新作者:分配ID和插入在同一把锁下完成,并发新建不会互相覆盖
	author = NewAuthor(0, name, nil, "")
	if err := s.authors.CreateWithNextID(ctx, author); err != nil {
		return 0, err
	}
	return author.ID, nil
}

// linkAuthor 已显式指定AuthorID时不处理;否则按姓名解析
func (s *service) linkAuthor(ctx context.Context, book *Book, authorName string) error {
	if book.AuthorID != nil || strings.TrimSpace(authorName) == "" {
		return nil
	}
	id, err := s.ResolveAuthor(ctx, authorName)
	if err != nil {
		return err
	}
	book.LinkAuthor(id)
	return nil
}
