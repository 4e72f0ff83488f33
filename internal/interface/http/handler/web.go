package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/relatorio/internal/application/book"
	"github.com/xiebiao/relatorio/internal/interface/http/dto"
	"github.com/xiebiao/relatorio/internal/interface/http/flash"
	apperrors "github.com/xiebiao/relatorio/pkg/errors"
	"github.com/xiebiao/relatorio/pkg/logger"
)

// uploadField 上传表单中的文件字段
const uploadField = "arquivo"

// WebHandler 页面处理器(服务端渲染 + Post/Redirect/Get)
// 设计说明：
// 1. 读失败时页面降级为空列表并记录日志，不向用户显示500
// 2. 写操作完成后重定向回首页，结果通过flash消息显示
type WebHandler struct {
	listBooks  *appbook.ListBooksUseCase
	getBook    *appbook.GetBookUseCase
	deleteBook *appbook.DeleteBookUseCase
	importCSV  *appbook.ImportCSVUseCase
	flash      *flash.Manager
	pageSize   int
	maxUpload  int64
}

// NewWebHandler 创建页面处理器
func NewWebHandler(
	listBooks *appbook.ListBooksUseCase,
	getBook *appbook.GetBookUseCase,
	deleteBook *appbook.DeleteBookUseCase,
	importCSV *appbook.ImportCSVUseCase,
	flashManager *flash.Manager,
	pageSize int,
	maxUpload int64,
) *WebHandler {
	return &WebHandler{
		listBooks:  listBooks,
		getBook:    getBook,
		deleteBook: deleteBook,
		importCSV:  importCSV,
		flash:      flashManager,
		pageSize:   pageSize,
		maxUpload:  maxUpload,
	}
}

// Index 首页：列表 + 搜索
func (h *WebHandler) Index(c *gin.Context) {
	var q dto.ListBooksQuery
	_ = c.ShouldBindQuery(&q)
	req := q.ToListRequest(h.pageSize)

	books := []*appbook.BookDTO{}
	var total int64

	result, err := h.listBooks.Execute(c.Request.Context(), req)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error().
			Err(err).
			Str("busca", req.Search).
			Msg("Erro ao buscar livros")
	} else {
		books, total = result.Books, result.Total
		req.Page, req.PageSize = result.Page, result.PageSize
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"livros":    books,
		"busca":     req.Search,
		"total":     total,
		"pagina":    req.Page,
		"limite":    req.PageSize,
		"mensagens": h.flash.Pop(c),
	})
}

// Detail 图书详情页，不存在时带提示重定向回首页
func (h *WebHandler) Detail(c *gin.Context) {
	id, ok := parseWebID(c)
	if !ok {
		h.flash.Error(c, "Livro não encontrado")
		h.redirectHome(c)
		return
	}

	result, err := h.getBook.Execute(c.Request.Context(), id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			h.flash.Error(c, "Livro não encontrado")
		} else {
			logger.FromContext(c.Request.Context()).Error().Err(err).Uint("livro_id", id).Msg("Erro ao buscar livro")
			h.flash.Error(c, "Erro ao buscar livro: "+err.Error())
		}
		h.redirectHome(c)
		return
	}

	c.HTML(http.StatusOK, "livro_detalhe.html", gin.H{
		"livro":     result,
		"mensagens": h.flash.Pop(c),
	})
}

// Delete 页面上的删除按钮
func (h *WebHandler) Delete(c *gin.Context) {
	id, ok := parseWebID(c)
	if !ok {
		h.flash.Error(c, "Livro não encontrado")
		h.redirectHome(c)
		return
	}

	err := h.deleteBook.Execute(c.Request.Context(), id)
	switch {
	case err == nil:
		h.flash.Success(c, "Livro excluído com sucesso!")
	case apperrors.IsNotFound(err):
		h.flash.Error(c, "Livro não encontrado")
	default:
		h.flash.Error(c, "Erro ao excluir livro: "+err.Error())
	}
	h.redirectHome(c)
}

// UploadCSV 批量导入
// 学习要点：
// 1. 没选文件(或文件为空)时直接提示，不进入导入流程
// 2. 单行失败不影响整体结果，只有文件级错误才显示错误提示
func (h *WebHandler) UploadCSV(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	header, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.flash.Error(c, "Erro ao processar arquivo CSV: "+err.Error())
		} else {
			h.flash.Error(c, apperrors.ErrMissingFile.Message)
		}
		h.redirectHome(c)
		return
	}
	if header.Filename == "" || header.Size == 0 {
		h.flash.Error(c, apperrors.ErrMissingFile.Message)
		h.redirectHome(c)
		return
	}

	file, err := header.Open()
	if err != nil {
		h.flash.Error(c, "Erro ao processar arquivo CSV: "+err.Error())
		h.redirectHome(c)
		return
	}
	defer file.Close()

	result, err := h.importCSV.Execute(c.Request.Context(), file)
	if err != nil {
		h.flash.Error(c, "Erro ao processar arquivo CSV: "+cause(err))
		h.redirectHome(c)
		return
	}

	logger.FromContext(c.Request.Context()).Info().
		Str("arquivo", header.Filename).
		Int("processados", result.Processed).
		Int("falhas", result.Failed).
		Msg("CSV importado")
	h.flash.Success(c, result.Summary())
	h.redirectHome(c)
}

func (h *WebHandler) redirectHome(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

func parseWebID(c *gin.Context) (uint, bool) {
	var p struct {
		ID uint `uri:"id" binding:"required"`
	}
	if err := c.ShouldBindUri(&p); err != nil {
		return 0, false
	}
	return p.ID, true
}

// cause 提示中只显示底层原因，前缀由调用方给出
func cause(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Err != nil {
		return appErr.Err.Error()
	}
	return err.Error()
}
