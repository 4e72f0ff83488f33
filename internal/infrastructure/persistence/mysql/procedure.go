package mysql

import (
	"context"
	"fmt"
	"regexp"

	"gorm.io/gorm"

	"github.com/xiebiao/relatorio/internal/domain/book"
	"github.com/xiebiao/relatorio/pkg/logger"
)

// procedureName 存储过程名只允许标识符字符(名字来自配置,直接拼进CALL语句)
var procedureName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// importProcedure 通过存储过程导入一行CSV
// 存储过程签名见scripts/schema.sql:
//
//	sp_importar_linha(p_codg_autor, p_nome, p_data_nascimento, p_cidade,
//	                  p_codg_livro, p_titulo, p_genero, p_sinopse,
//	                  p_codg_venda, p_local, p_quantidade)
//
// 作者姓名或销售ID为NULL时,存储过程跳过对应的upsert
type importProcedure struct {
	db   *gorm.DB
	call string
}

// NewImportProcedure 创建存储过程导入器
func NewImportProcedure(db *gorm.DB, name string) (book.ImportProcedure, error) {
	if !procedureName.MatchString(name) {
		return nil, fmt.Errorf("无效的存储过程名: %q", name)
	}
	return &importProcedure{
		db:   db,
		call: "CALL " + name + "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
	}, nil
}

// ImportLine 调用存储过程
func (p *importProcedure) ImportLine(ctx context.Context, line *book.ImportLine) error {
	args := make([]interface{}, 0, 11)

	// 作者只有ID(按姓名解析出的已有作者)时只传ID,存储过程只建立外键不覆盖作者
	switch a := line.Author; {
	case a != nil:
		args = append(args, a.ID, a.Name, a.BirthDate, a.City)
	case line.Book.AuthorID != nil:
		args = append(args, *line.Book.AuthorID, nil, nil, nil)
	default:
		args = append(args, nil, nil, nil, nil)
	}

	b := line.Book
	args = append(args, b.ID, b.Title, b.Genre, b.Synopsis)

	if s := line.Sale; s != nil {
		args = append(args, s.ID, s.City, s.Quantity)
	} else {
		args = append(args, nil, nil, nil)
	}

	if err := getDB(ctx, p.db).Exec(p.call, args...).Error; err != nil {
		logger.FromContext(ctx).Error().Err(err).Uint("livro_id", b.ID).Msg("存储过程导入失败")
		return wrapDBError(err, "Erro ao importar linha")
	}
	return nil
}
