package book

import (
	"github.com/xiebiao/relatorio/internal/domain/book"
)

// tracerName 应用层Span统一使用的Tracer名称
const tracerName = "relatorio/application/book"

// BookDTO 图书响应DTO
// 字段名沿用前端(index.html)的约定
type BookDTO struct {
	ID          uint   `json:"id" example:"1"`
	Titulo      string `json:"titulo" example:"Dom Casmurro"`
	Genero      string `json:"genero,omitempty" example:"Romance"`
	Sinopse     string `json:"sinopse,omitempty" example:"Bentinho e Capitu"`
	Autor       string `json:"autor,omitempty" example:"Machado de Assis"`
	AutorID     *uint  `json:"autor_id,omitempty" example:"1"`
	CidadeAutor string `json:"cidade_autor,omitempty" example:"Rio de Janeiro"`
	TotalVendas int64  `json:"total_vendas" example:"42"`
}

// SaveBookRequest 新建/更新请求DTO(部分实体,缺省字段按空值覆盖)
type SaveBookRequest struct {
	ID      *uint  // 为空时由系统分配
	Titulo  string // 书名
	Genero  string // 类型
	Sinopse string // 简介
	Autor   string // 作者姓名(AutorID为空时按姓名查找或新建)
	AutorID *uint  // 作者ID
}

// toEntity 请求DTO → 领域实体
func (r SaveBookRequest) toEntity() *book.Book {
	var id uint
	if r.ID != nil {
		id = *r.ID
	}
	return book.NewBook(id, r.Titulo, r.Genero, r.Sinopse, r.AutorID)
}

// toBookDTO 读模型 → DTO
func toBookDTO(v *book.BookView) *BookDTO {
	return &BookDTO{
		ID:          v.ID,
		Titulo:      v.Title,
		Genero:      v.Genre,
		Sinopse:     v.Synopsis,
		Autor:       v.AuthorName,
		AutorID:     v.AuthorID,
		CidadeAutor: v.AuthorCity,
		TotalVendas: v.TotalSales,
	}
}
