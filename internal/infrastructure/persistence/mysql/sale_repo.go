package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/relatorio/internal/domain/book"
	"github.com/xiebiao/relatorio/pkg/logger"
)

// saleRepository 销售记录仓储实现(MySQL)
type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository 创建销售记录仓储
func NewSaleRepository(db *gorm.DB) book.SaleRepository {
	return &saleRepository{db: db}
}

// Upsert 按ID插入或覆盖
func (r *saleRepository) Upsert(ctx context.Context, s *book.Sale) error {
	model := &VendaModel{
		ID:         s.ID,
		Cidade:     s.City,
		Quantidade: s.Quantity,
		LivroID:    s.BookID,
	}

	err := getDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "CODG_VENDA_PK"}},
		DoUpdates: clause.AssignmentColumns([]string{"CIDADE", "QUANTIDADE", "CODG_LIVRO_FK"}),
	}).Create(model).Error
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).
			Uint("venda_id", s.ID).
			Uint("livro_id", s.BookID).
			Msg("保存销售记录失败")
		return wrapDBError(err, "Erro ao salvar venda")
	}
	return nil
}

// NextID 计算MAX(id)+1
func (r *saleRepository) NextID(ctx context.Context) (uint, error) {
	next, err := nextID(ctx, r.db, &VendaModel{}, "CODG_VENDA_PK")
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("计算销售记录ID失败")
		return 0, wrapDBError(err, "Erro ao gerar id da venda")
	}
	return next, nil
}
