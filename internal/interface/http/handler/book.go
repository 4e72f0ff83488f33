package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/relatorio/internal/application/book"
	"github.com/xiebiao/relatorio/internal/domain/book"
	"github.com/xiebiao/relatorio/internal/interface/http/dto"
	apperrors "github.com/xiebiao/relatorio/pkg/errors"
	"github.com/xiebiao/relatorio/pkg/response"
)

// BookHandler 图书REST API处理器
type BookHandler struct {
	listBooks   *appbook.ListBooksUseCase
	getBook     *appbook.GetBookUseCase
	createBook  *appbook.CreateBookUseCase
	updateBook  *appbook.UpdateBookUseCase
	deleteBook  *appbook.DeleteBookUseCase
	defaultSize int
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	listBooks *appbook.ListBooksUseCase,
	getBook *appbook.GetBookUseCase,
	createBook *appbook.CreateBookUseCase,
	updateBook *appbook.UpdateBookUseCase,
	deleteBook *appbook.DeleteBookUseCase,
) *BookHandler {
	return &BookHandler{
		listBooks:   listBooks,
		getBook:     getBook,
		createBook:  createBook,
		updateBook:  updateBook,
		deleteBook:  deleteBook,
		defaultSize: appbook.DefaultPageSize,
	}
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  分页查询图书，按销量降序，可按书名搜索
// @Tags         图书
// @Produce      json
// @Param        pagina query int    false "页码(从0开始)" default(0)
// @Param        limite query int    false "每页数量"      default(10)
// @Param        busca  query string false "书名关键词"
// @Success      200 {object} response.PageData{livros=[]appbook.BookDTO}
// @Failure      500 {object} response.ErrorBody
// @Router       /api/livros [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var q dto.ListBooksQuery
	_ = c.ShouldBindQuery(&q) // 只有字符串字段，不会失败

	result, err := h.listBooks.Execute(c.Request.Context(), q.ToListRequest(h.defaultSize))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, result.Books, result.Total, result.Page, result.PageSize)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} appbook.BookDTO
// @Failure      404 {object} response.ErrorBody "Livro não encontrado"
// @Failure      500 {object} response.ErrorBody
// @Router       /api/livros/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	result, err := h.getBook.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateBook 新建图书
// @Summary      新建图书
// @Description  未指定id时分配MAX+1；只给作者姓名时按姓名查找或新建作者
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        request body dto.BookRequest true "图书信息"
// @Success      201 {object} appbook.BookDTO
// @Failure      400 {object} response.ErrorBody "JSON inválido"
// @Failure      500 {object} response.ErrorBody
// @Router       /api/livros [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	req, ok := bindBook(c)
	if !ok {
		return
	}

	result, err := h.createBook.Execute(c.Request.Context(), req.ToSaveRequest())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateBook 更新图书
// @Summary      更新图书
// @Description  整行覆盖；路径中的id优先于请求体；图书不存在时返回404且不写入
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        id      path int             true "图书ID"
// @Param        request body dto.BookRequest true "图书信息"
// @Success      200 {object} appbook.BookDTO
// @Failure      400 {object} response.ErrorBody "JSON inválido"
// @Failure      404 {object} response.ErrorBody "Livro não encontrado"
// @Failure      500 {object} response.ErrorBody
// @Router       /api/livros/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	req, ok := bindBook(c)
	if !ok {
		return
	}

	result, err := h.updateBook.Execute(c.Request.Context(), id, req.ToSaveRequest())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Description  同时删除该图书的销售记录
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.MessageBody
// @Failure      404 {object} response.ErrorBody "Livro não encontrado"
// @Failure      500 {object} response.ErrorBody
// @Router       /api/livros/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	if err := h.deleteBook.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, "Livro removido com sucesso")
}

// ImportBook 通过JSON导入单本图书
// @Summary      导入图书
// @Description  与新建相同，响应只返回提示和ID
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        request body dto.BookRequest true "图书信息"
// @Success      200 {object} dto.ImportBookResponse
// @Failure      400 {object} response.ErrorBody "JSON inválido"
// @Failure      500 {object} response.ErrorBody
// @Router       /api/livros/importar [post]
func (h *BookHandler) ImportBook(c *gin.Context) {
	req, ok := bindBook(c)
	if !ok {
		return
	}

	result, err := h.createBook.Execute(c.Request.Context(), req.ToSaveRequest())
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "Erro ao importar livro"))
		return
	}

	response.Success(c, dto.ImportBookResponse{
		Mensagem: "Livro importado com sucesso",
		ID:       result.ID,
	})
}

// bookID 解析路径中的图书ID
// 非数字的ID匹配不到任何图书，按404处理
func bookID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, book.ErrBookNotFound)
		return 0, false
	}
	return uint(id), true
}

// bindBook 解析请求体，空体或非法JSON返回400
func bindBook(c *gin.Context) (*dto.BookRequest, bool) {
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, apperrors.ErrBindError.Message)
		return nil, false
	}
	return &req, true
}
