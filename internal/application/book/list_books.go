package book

import (
	"context"
	"math"

	"github.com/xiebiao/relatorio/internal/domain/book"
	apperrors "github.com/xiebiao/relatorio/pkg/errors"
	"github.com/xiebiao/relatorio/pkg/metrics"
	"github.com/xiebiao/relatorio/pkg/tracing"
)

const (
	// DefaultPageSize 默认每页数量
	DefaultPageSize = 10
	// MaxPageSize 每页数量上限
	MaxPageSize = 100
)

// ListBooksUseCase 图书列表查询用例
// 设计说明:
// 1. 支持分页(页码从0开始)和书名搜索
// 2. 默认按销量降序
// 3. 出错时返回错误,由接口层决定是报错(API)还是降级为空列表(页面)
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookService: bookService,
	}
}

// ListBooksRequest 列表查询请求DTO
type ListBooksRequest struct {
	Page     int    // 页码(从0开始)
	PageSize int    // 每页数量
	Search   string // 书名关键词
}

// ListBooksResponse 列表查询响应DTO
type ListBooksResponse struct {
	Books    []*BookDTO
	Total    int64
	Page     int
	PageSize int
}

// Execute 执行列表查询用例
// 学习要点:
// 1. 参数默认值处理(page默认0, pageSize默认10)
// 2. 参数范围限制(pageSize最大100)
// 3. 偏移量 = 页码 * 每页数量,页码上限保证乘积不溢出
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (resp *ListBooksResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "ListBooks")
	defer func() {
		metrics.ObserveBookOperation("list", err, false)
		tracing.EndSpan(span, err)
	}()

	// 1. 参数默认值与范围限制
	if req.Page < 0 {
		req.Page = 0
	}
	if req.PageSize < 1 {
		req.PageSize = DefaultPageSize
	}
	if req.PageSize > MaxPageSize {
		req.PageSize = MaxPageSize
	}
	if maxPage := math.MaxInt / req.PageSize; req.Page > maxPage {
		req.Page = maxPage
	}

	// 2. 查询
	views, total, err := uc.bookService.ListBooks(ctx, book.ListParams{
		Limit:  req.PageSize,
		Offset: req.Page * req.PageSize,
		Search: req.Search,
	})
	if err != nil {
		return nil, err
	}

	// 3. 转换为DTO
	books := make([]*BookDTO, len(views))
	for i, v := range views {
		books[i] = toBookDTO(v)
	}

	return &ListBooksResponse{
		Books:    books,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

// GetBookUseCase 图书详情用例
type GetBookUseCase struct {
	bookService book.Service
}

// NewGetBookUseCase 创建详情用例
func NewGetBookUseCase(bookService book.Service) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService}
}

// Execute 根据ID获取图书,不存在返回ErrBookNotFound
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (dto *BookDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "GetBook")
	defer func() {
		metrics.ObserveBookOperation("get", err, apperrors.IsNotFound(err))
		tracing.EndSpan(span, err)
	}()

	view, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBookDTO(view), nil
}
