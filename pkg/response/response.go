package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/relatorio/pkg/errors"
	"github.com/xiebiao/relatorio/pkg/logger"
)

// 设计说明：
// 1. 成功时直接返回实体/列表JSON（不包统一信封），与前端index.html的解析逻辑保持一致
// 2. 失败时返回 {"erro": "..."}，文本中拼接底层驱动错误，HTTP状态码由业务错误码推导
// 3. 纯提示类响应返回 {"mensagem": "..."}

// ErrorBody 错误响应体
type ErrorBody struct {
	Erro string `json:"erro" example:"Livro não encontrado"`
}

// MessageBody 提示响应体
type MessageBody struct {
	Mensagem string `json:"mensagem" example:"Livro removido com sucesso"`
}

// PageData 分页数据封装（字段名沿用前端约定）
type PageData struct {
	Livros interface{} `json:"livros"` // 当前页数据
	Total  int64       `json:"total"`  // 总记录数
	Pagina int         `json:"pagina"` // 当前页码（从0开始）
	Limite int         `json:"limite"` // 每页大小
}

// Success 200 + 数据
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 201 + 新建的实体
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Message 200 + 提示信息
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageBody{Mensagem: message})
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	Success(c, PageData{
		Livros: list,
		Total:  total,
		Pagina: page,
		Limite: pageSize,
	})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	view, err := uc.Execute(ctx, id)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := apperrors.HTTPStatus(appErr.Code)

	// 5xx记录到服务端日志（含底层错误）
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error().
			Err(err).
			Int("code", appErr.Code).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}

	c.JSON(status, ErrorBody{Erro: appErr.Error()})
}

// ErrorWithStatus 自定义状态码和消息
func ErrorWithStatus(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorBody{Erro: message})
}
