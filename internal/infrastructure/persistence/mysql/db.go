package mysql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xiebiao/relatorio/internal/infrastructure/config"
	apperrors "github.com/xiebiao/relatorio/pkg/errors"
	"github.com/xiebiao/relatorio/pkg/logger"
)

// NewDB 创建数据库连接池
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 连接池有上限（MaxOpenConns、MaxIdleConns、ConnMaxLifetime），每次仓储调用从池中借用连接，
//    结束后（包括出错和panic）由database/sql归还
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 表结构以scripts/schema.sql为准，AutoMigrate只在显式开启时执行
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	// 1. 构建DSN连接字符串
	dsn := cfg.Database.DSN()

	// 2. 配置GORM日志
	logLevel := gormlogger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = gormlogger.Info // 开发环境打印SQL
	}

	// 3. 连接数据库
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeConnectivity, apperrors.ErrConnectivity.Message)
	}

	// 4. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 5. 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeConnectivity, apperrors.ErrConnectivity.Message)
	}

	logger.L().Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.DBName).
		Msg("数据库连接成功")

	// 6. 自动迁移（仅开发环境）
	if cfg.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	return db, nil
}

// Ping 检查连接池是否可用（健康检查使用）
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeConnectivity, apperrors.ErrConnectivity.Message)
	}
	return nil
}

// AutoMigrate 自动迁移表结构
// 注意：只创建三张表，视图和存储过程只能由初始化脚本创建
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&AutorModel{},
		&LivroModel{},
		&VendaModel{},
	)
}

// AutorModel GORM作者模型
// 设计说明：
// 1. 列名沿用既有数据库（全大写），用column tag显式映射
// 2. 主键由导入数据提供，关闭自增
type AutorModel struct {
	ID             uint       `gorm:"column:CODG_AUTOR_PK;primaryKey;autoIncrement:false"`
	Nome           string     `gorm:"column:NOME;size:255"`
	DataNascimento *time.Time `gorm:"column:DATA_NASCIMENTO;type:date"`
	Cidade         string     `gorm:"column:CIDADE;size:255"`
}

// TableName 指定表名
func (AutorModel) TableName() string {
	return "autor"
}

// LivroModel GORM图书模型
// 注意：简介列在既有库中拼写为SINOSPE
type LivroModel struct {
	ID      uint   `gorm:"column:CODG_LIVRO_PK;primaryKey;autoIncrement:false"`
	Titulo  string `gorm:"column:TITULO;size:255"`
	Genero  string `gorm:"column:GENERO;size:100"`
	Sinopse string `gorm:"column:SINOSPE;type:text"`
	AutorID *uint  `gorm:"column:CODG_AUTOR_FK;index"`
}

// TableName 指定表名
func (LivroModel) TableName() string {
	return "livro"
}

// VendaModel GORM销售记录模型
// 删除图书前必须先删除引用它的销售记录（没有级联删除）
type VendaModel struct {
	ID         uint   `gorm:"column:CODG_VENDA_PK;primaryKey;autoIncrement:false"`
	Cidade     string `gorm:"column:CIDADE;size:255"`
	Quantidade int    `gorm:"column:QUANTIDADE"`
	LivroID    uint   `gorm:"column:CODG_LIVRO_FK;index"`
}

// TableName 指定表名
func (VendaModel) TableName() string {
	return "vendas"
}
