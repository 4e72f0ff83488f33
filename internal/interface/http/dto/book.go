package dto

import (
	"strconv"
	"strings"

	appbook "github.com/xiebiao/relatorio/internal/application/book"
)

// BookRequest 新建/更新/导入图书的请求体
// 字段都可省略，省略的字段按空值写入(upsert整行覆盖)
// 兼容旧客户端的 {"titulo","autor"} 格式：autor是作者姓名，按姓名查找或新建作者
type BookRequest struct {
	ID      *uint  `json:"id" example:"1"`
	Titulo  string `json:"titulo" example:"Dom Casmurro"`
	Genero  string `json:"genero" example:"Romance"`
	Sinopse string `json:"sinopse" example:"Bentinho e Capitu"`
	Autor   string `json:"autor" example:"Machado de Assis"`
	AutorID *uint  `json:"autor_id" example:"1"`
}

// ToSaveRequest HTTP请求 → 应用层请求
func (r BookRequest) ToSaveRequest() appbook.SaveBookRequest {
	return appbook.SaveBookRequest{
		ID:      r.ID,
		Titulo:  r.Titulo,
		Genero:  r.Genero,
		Sinopse: r.Sinopse,
		Autor:   r.Autor,
		AutorID: r.AutorID,
	}
}

// ListBooksQuery 列表查询参数
// 用字符串接收：非数字的pagina/limite回退到默认值，而不是报400
type ListBooksQuery struct {
	Pagina string `form:"pagina" example:"0"`
	Limite string `form:"limite" example:"10"`
	Busca  string `form:"busca" example:"Dom"`
}

// ToListRequest 查询参数 → 应用层请求
func (q ListBooksQuery) ToListRequest(defaultLimit int) appbook.ListBooksRequest {
	return appbook.ListBooksRequest{
		Page:     atoiOr(q.Pagina, 0),
		PageSize: atoiOr(q.Limite, defaultLimit),
		Search:   strings.TrimSpace(q.Busca),
	}
}

// ImportBookResponse POST /livros/importar 的响应
type ImportBookResponse struct {
	Mensagem string `json:"mensagem" example:"Livro importado com sucesso"`
	ID       uint   `json:"id" example:"1"`
}

func atoiOr(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}
