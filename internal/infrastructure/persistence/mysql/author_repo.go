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

// authorRepository 作者仓储实现(MySQL)
type authorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository 创建作者仓储
func NewAuthorRepository(db *gorm.DB) book.AuthorRepository {
	return &authorRepository{db: db}
}

// Upsert 按ID插入或覆盖姓名、出生日期、城市
func (r *authorRepository) Upsert(ctx context.Context, a *book.Author) error {
	model := &AutorModel{
		ID:             a.ID,
		Nome:           a.Name,
		DataNascimento: a.BirthDate,
		Cidade:         a.City,
	}

	err := getDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "CODG_AUTOR_PK"}},
		DoUpdates: clause.AssignmentColumns([]string{"NOME", "DATA_NASCIMENTO", "CIDADE"}),
	}).Create(model).Error
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Uint("autor_id", a.ID).Msg("保存作者失败")
		return wrapDBError(err, "Erro ao salvar autor")
	}
	return nil
}

// FindByName 按姓名查找(忽略大小写),同名时取ID最小的
func (r *authorRepository) FindByName(ctx context.Context, name string) (*book.Author, error) {
	var model AutorModel
	err := getDB(ctx, r.db).
		Where("LOWER(NOME) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("CODG_AUTOR_PK ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrAuthorNotFound
		}
		logger.FromContext(ctx).Error().Err(err).Str("nome", name).Msg("查询作者失败")
		return nil, wrapDBError(err, "Erro ao buscar autor")
	}

	return &book.Author{
		ID:        model.ID,
		Name:      model.Nome,
		BirthDate: model.DataNascimento,
		City:      model.Cidade,
	}, nil
}

// NextID 计算MAX(id)+1
func (r *authorRepository) NextID(ctx context.Context) (uint, error) {
	next, err := nextID(ctx, r.db, &AutorModel{}, "CODG_AUTOR_PK")
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("计算作者ID失败")
		return 0, wrapDBError(err, "Erro ao gerar id do autor")
	}
	return next, nil
}

// CreateWithNextID 原子分配ID并插入
// 与图书相同:FOR UPDATE锁住最大行,普通INSERT冲突时报错而不是改写别人的姓名
func (r *authorRepository) CreateWithNextID(ctx context.Context, a *book.Author) error {
	err := getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		err := tx.Model(&AutorModel{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Order("CODG_AUTOR_PK DESC").
			Limit(1).
			Pluck("CODG_AUTOR_PK", &ids).Error
		if err != nil {
			return err
		}

		a.ID = 1
		if len(ids) > 0 {
			a.ID = ids[0] + 1
		}

		return tx.Create(&AutorModel{
			ID:             a.ID,
			Nome:           a.Name,
			DataNascimento: a.BirthDate,
			Cidade:         a.City,
		}).Error
	})
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("nome", a.Name).Msg("新建作者失败")
		a.ID = 0
		return wrapDBError(err, "Erro ao salvar autor")
	}
	return nil
}
