package book

import (
	"strings"
	"time"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. ID由调用方提供或由系统计算MAX+1,数据库不自增(CSV行可能自带ID)
// 2. AuthorID是指向autor表的外键,可为空(作者未知)
// 3. 销量不存储在Book上,只在读模型BookView中由SUM聚合得到
type Book struct {
	ID       uint
	Title    string // 书名
	Genre    string // 类型
	Synopsis string // 简介
	AuthorID *uint  // 作者ID(可空)
}

// NewBook 创建图书(工厂方法)
// id为0表示由系统分配
func NewBook(id uint, title, genre, synopsis string, authorID *uint) *Book {
	return &Book{
		ID:       id,
		Title:    strings.TrimSpace(title),
		Genre:    strings.TrimSpace(genre),
		Synopsis: strings.TrimSpace(synopsis),
		AuthorID: authorID,
	}
}

// HasID 是否已指定ID
func (b *Book) HasID() bool {
	return b.ID > 0
}

// LinkAuthor 关联作者
func (b *Book) LinkAuthor(authorID uint) {
	id := authorID
	b.AuthorID = &id
}

// BookView 图书读模型(图书 + 作者 + 销量合计)
// 与数据库视图view_relatorio_livros的列一一对应,只读
type BookView struct {
	ID         uint
	Title      string
	Genre      string
	Synopsis   string
	AuthorID   *uint
	AuthorName string
	AuthorCity string
	TotalSales int64 // SUM(vendas.QUANTIDADE),没有销售记录时为0
}

// Author 作者实体
type Author struct {
	ID        uint
	Name      string
	BirthDate *time.Time // 出生日期(可空)
	City      string
}

// NewAuthor 创建作者
func NewAuthor(id uint, name string, birthDate *time.Time, city string) *Author {
	return &Author{
		ID:        id,
		Name:      strings.TrimSpace(name),
		BirthDate: birthDate,
		City:      strings.TrimSpace(city),
	}
}

// Sale 销售记录
// 每条CSV行代表一次销售事件,按ID upsert,不做批内去重
type Sale struct {
	ID       uint
	City     string // 销售地点(CSV中的LOCAL列)
	Quantity int
	BookID   uint
}

// ImportLine CSV一行的完整内容(非规范化)
// 存储过程模式下整行一次性传给sp_importar_linha
type ImportLine struct {
	Author *Author // 可空
	Book   *Book
	Sale   *Sale // 可空
}
