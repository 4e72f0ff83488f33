package mysql

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/relatorio/internal/domain/book"
	"github.com/xiebiao/relatorio/pkg/logger"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 读操作联表查询作者和销量合计,写操作只写livro表(删除时连带vendas)
// 3. 驱动错误统一归类为Connectivity/Persistence(见utils.go)
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// bookViewColumns 读模型的列(与view_relatorio_livros一致)
const bookViewColumns = `l.CODG_LIVRO_PK AS id,
	l.TITULO AS titulo,
	l.GENERO AS genero,
	l.SINOSPE AS sinopse,
	l.CODG_AUTOR_FK AS autor_id,
	a.NOME AS nome_autor,
	a.CIDADE AS cidade_autor,
	COALESCE(SUM(v.QUANTIDADE), 0) AS total_vendas`

const bookViewGroupBy = "l.CODG_LIVRO_PK, l.TITULO, l.GENERO, l.SINOSPE, l.CODG_AUTOR_FK, a.NOME, a.CIDADE"

// bookViewRow 联表查询的扫描目标
// LEFT JOIN后作者列可能为NULL,文本列一律用指针
type bookViewRow struct {
	ID          uint    `gorm:"column:id"`
	Titulo      *string `gorm:"column:titulo"`
	Genero      *string `gorm:"column:genero"`
	Sinopse     *string `gorm:"column:sinopse"`
	AutorID     *uint   `gorm:"column:autor_id"`
	NomeAutor   *string `gorm:"column:nome_autor"`
	CidadeAutor *string `gorm:"column:cidade_autor"`
	TotalVendas int64   `gorm:"column:total_vendas"`
}

// List 分页查询图书列表
// SQL等价于:
//
//	SELECT ... FROM livro l
//	LEFT JOIN autor a ON l.CODG_AUTOR_FK = a.CODG_AUTOR_PK
//	LEFT JOIN vendas v ON l.CODG_LIVRO_PK = v.CODG_LIVRO_FK
//	WHERE LOWER(l.TITULO) LIKE ? ESCAPE '!'
//	GROUP BY ...
//	ORDER BY total_vendas DESC, l.CODG_LIVRO_PK ASC
//	LIMIT ? OFFSET ?
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.BookView, error) {
	query := r.viewQuery(ctx, params.Search).
		Order("total_vendas DESC").
		Order("l.CODG_LIVRO_PK ASC")

	// MySQL不支持单独的OFFSET,只在有LIMIT时分页
	if params.Limit > 0 {
		query = query.Limit(params.Limit).Offset(params.Offset)
	}

	var rows []bookViewRow
	if err := query.Scan(&rows).Error; err != nil {
		logger.FromContext(ctx).Error().Err(err).
			Str("busca", params.Search).
			Msg("查询图书列表失败")
		return nil, wrapDBError(err, "Erro ao listar livros")
	}

	books := make([]*book.BookView, 0, len(rows))
	for i := range rows {
		books = append(books, toBookView(&rows[i]))
	}
	return books, nil
}

// Count 与List相同过滤条件下的总数
func (r *bookRepository) Count(ctx context.Context, search string) (int64, error) {
	var total int64
	query := r.filter(getDB(ctx, r.db).Table("livro AS l"), search)
	if err := query.Count(&total).Error; err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("busca", search).Msg("统计图书总数失败")
		return 0, wrapDBError(err, "Erro ao contar livros")
	}
	return total, nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.BookView, error) {
	var rows []bookViewRow
	err := r.viewQuery(ctx, "").
		Where("l.CODG_LIVRO_PK = ?", id).
		Scan(&rows).Error
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Uint("livro_id", id).Msg("查询图书失败")
		return nil, wrapDBError(err, "Erro ao buscar livro")
	}
	if len(rows) == 0 {
		return nil, book.ErrBookNotFound
	}
	return toBookView(&rows[0]), nil
}

// Upsert 按ID插入或覆盖
// MySQL: INSERT ... ON DUPLICATE KEY UPDATE TITULO=VALUES(TITULO), ...
func (r *bookRepository) Upsert(ctx context.Context, b *book.Book) error {
	model := toLivroModel(b)

	err := getDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "CODG_LIVRO_PK"}},
		DoUpdates: clause.AssignmentColumns([]string{"TITULO", "GENERO", "SINOSPE", "CODG_AUTOR_FK"}),
	}).Create(model).Error
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Uint("livro_id", b.ID).Msg("保存图书失败")
		return wrapDBError(err, "Erro ao salvar livro")
	}
	return nil
}

// errNothingDeleted 删除0行时用于触发回滚
var errNothingDeleted = errors.New("nothing deleted")

// Delete 删除图书
// 教学要点:
// 1. 没有级联删除,先删vendas再删livro
// 2. 两步在同一事务中;livro删除0行时回滚,整体不产生任何修改
func (r *bookRepository) Delete(ctx context.Context, id uint) (bool, error) {
	err := getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("CODG_LIVRO_FK = ?", id).Delete(&VendaModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&LivroModel{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errNothingDeleted
		}
		return nil
	})

	if errors.Is(err, errNothingDeleted) {
		return false, nil
	}
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Uint("livro_id", id).Msg("删除图书失败")
		return false, wrapDBError(err, "Erro ao excluir livro")
	}
	return true, nil
}

// NextID 计算MAX(id)+1
// 注意:非原子操作,仅用于CSV导入(整批在一个事务中)
func (r *bookRepository) NextID(ctx context.Context) (uint, error) {
	next, err := nextID(ctx, r.db, &LivroModel{}, "CODG_LIVRO_PK")
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("计算图书ID失败")
		return 0, wrapDBError(err, "Erro ao gerar id do livro")
	}
	return next, nil
}

// CreateWithNextID 原子分配ID并插入
// 教学要点:
// 1. SELECT ... ORDER BY id DESC LIMIT 1 FOR UPDATE 锁住当前最大行及其后的间隙
// 2. 并发的新建请求在锁上排队,不会算出同一个ID
// 3. 用普通INSERT而不是upsert,万一冲突会报错而不是静默覆盖
func (r *bookRepository) CreateWithNextID(ctx context.Context, b *book.Book) error {
	err := getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		err := tx.Model(&LivroModel{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Order("CODG_LIVRO_PK DESC").
			Limit(1).
			Pluck("CODG_LIVRO_PK", &ids).Error
		if err != nil {
			return err
		}

		b.ID = 1
		if len(ids) > 0 {
			b.ID = ids[0] + 1
		}

		return tx.Create(toLivroModel(b)).Error
	})
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("titulo", b.Title).Msg("新建图书失败")
		b.ID = 0
		return wrapDBError(err, "Erro ao salvar livro")
	}
	return nil
}

// viewQuery 联表+聚合的基础查询
func (r *bookRepository) viewQuery(ctx context.Context, search string) *gorm.DB {
	query := getDB(ctx, r.db).
		Table("livro AS l").
		Select(bookViewColumns).
		Joins("LEFT JOIN autor a ON l.CODG_AUTOR_FK = a.CODG_AUTOR_PK").
		Joins("LEFT JOIN vendas v ON l.CODG_LIVRO_PK = v.CODG_LIVRO_FK").
		Group(bookViewGroupBy)
	return r.filter(query, search)
}

// filter 书名关键词过滤(忽略大小写的子串匹配)
func (r *bookRepository) filter(query *gorm.DB, search string) *gorm.DB {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return query
	}
	return query.Where("LOWER(l.TITULO) LIKE ? ESCAPE '!'", "%"+escapeLike(term)+"%")
}

// nextID 通用的MAX+1计算
func nextID(ctx context.Context, db *gorm.DB, model interface{}, column string) (uint, error) {
	var next uint
	err := getDB(ctx, db).Model(model).
		Select("COALESCE(MAX(" + column + "), 0) + 1").
		Scan(&next).Error
	return next, err
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toLivroModel 领域实体 → GORM模型
func toLivroModel(b *book.Book) *LivroModel {
	return &LivroModel{
		ID:      b.ID,
		Titulo:  b.Title,
		Genero:  b.Genre,
		Sinopse: b.Synopsis,
		AutorID: b.AuthorID,
	}
}

// toBookView 查询结果 → 读模型
func toBookView(row *bookViewRow) *book.BookView {
	return &book.BookView{
		ID:         row.ID,
		Title:      deref(row.Titulo),
		Genre:      deref(row.Genero),
		Synopsis:   deref(row.Sinopse),
		AuthorID:   row.AutorID,
		AuthorName: deref(row.NomeAutor),
		AuthorCity: deref(row.CidadeAutor),
		TotalSales: row.TotalVendas,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
