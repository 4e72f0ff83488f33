package book

import (
	"context"

	"github.com/xiebiao/relatorio/internal/domain/book"
	apperrors "github.com/xiebiao/relatorio/pkg/errors"
	"github.com/xiebiao/relatorio/pkg/metrics"
	"github.com/xiebiao/relatorio/pkg/tracing"
)

// CreateBookUseCase 新建图书用例
// 设计说明:
// 1. 应用层负责用例编排,业务规则(作者解析、ID分配)由领域服务负责
// 2. 同一个用例同时服务 POST /livros 和 POST /livros/importar
type CreateBookUseCase struct {
	bookService book.Service
}

// NewCreateBookUseCase 创建新建图书用例
func NewCreateBookUseCase(bookService book.Service) *CreateBookUseCase {
	return &CreateBookUseCase{bookService: bookService}
}

// Execute 执行新建用例,返回存储后的图书(含分配的ID)
func (uc *CreateBookUseCase) Execute(ctx context.Context, req SaveBookRequest) (dto *BookDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateBook")
	defer func() {
		metrics.ObserveBookOperation("create", err, false)
		tracing.EndSpan(span, err)
	}()

	view, err := uc.bookService.CreateBook(ctx, req.toEntity(), req.Autor)
	if err != nil {
		return nil, err
	}
	return toBookDTO(view), nil
}

// UpdateBookUseCase 更新图书用例
type UpdateBookUseCase struct {
	bookService book.Service
}

// NewUpdateBookUseCase 创建更新图书用例
func NewUpdateBookUseCase(bookService book.Service) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService}
}

// Execute 执行更新用例
// 学习要点:
// 1. 路径中的ID优先,请求体中的ID被忽略
// 2. 图书不存在时返回ErrBookNotFound,不会新建
func (uc *UpdateBookUseCase) Execute(ctx context.Context, id uint, req SaveBookRequest) (dto *BookDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "UpdateBook")
	defer func() {
		metrics.ObserveBookOperation("update", err, apperrors.IsNotFound(err))
		tracing.EndSpan(span, err)
	}()

	view, err := uc.bookService.UpdateBook(ctx, id, req.toEntity(), req.Autor)
	if err != nil {
		return nil, err
	}
	return toBookDTO(view), nil
}

// DeleteBookUseCase 删除图书用例
type DeleteBookUseCase struct {
	bookService book.Service
}

// NewDeleteBookUseCase 创建删除图书用例
func NewDeleteBookUseCase(bookService book.Service) *DeleteBookUseCase {
	return &DeleteBookUseCase{bookService: bookService}
}

// Execute 删除图书及其销售记录,不存在返回ErrBookNotFound
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "DeleteBook")
	defer func() {
		metrics.ObserveBookOperation("delete", err, apperrors.IsNotFound(err))
		tracing.EndSpan(span, err)
	}()

	return uc.bookService.DeleteBook(ctx, id)
}
