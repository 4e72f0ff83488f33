package main

import (
	"context"

	"gorm.io/gorm"

	appbook "github.com/xiebiao/relatorio/internal/application/book"
	"github.com/xiebiao/relatorio/internal/domain/book"
	"github.com/xiebiao/relatorio/internal/infrastructure/config"
	"github.com/xiebiao/relatorio/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/relatorio/internal/interface/http/flash"
	"github.com/xiebiao/relatorio/internal/interface/http/handler"
	"github.com/xiebiao/relatorio/pkg/circuitbreaker"
	"github.com/xiebiao/relatorio/pkg/logger"
	"github.com/xiebiao/relatorio/pkg/metrics"
)

// 自定义Provider：构造参数需要从Config中提取，main.go和wire.go共用

// provideImportProcedure 未启用存储过程模式时返回nil，导入用例逐表upsert
func provideImportProcedure(cfg *config.Config, db *gorm.DB) (book.ImportProcedure, error) {
	if !cfg.Importer.UseProcedure {
		return nil, nil
	}
	return mysql.NewImportProcedure(db, cfg.Importer.ProcedureName)
}

// provideFlashManager 从配置创建提示消息管理器
func provideFlashManager(cfg *config.Config, store flash.Store) *flash.Manager {
	return flash.NewManager(store, cfg.Flash.CookieName, cfg.Flash.TTL)
}

// provideWebHandler 页面处理器需要分页大小和上传上限
func provideWebHandler(
	cfg *config.Config,
	listBooks *appbook.ListBooksUseCase,
	getBook *appbook.GetBookUseCase,
	deleteBook *appbook.DeleteBookUseCase,
	importCSV *appbook.ImportCSVUseCase,
	flashManager *flash.Manager,
) *handler.WebHandler {
	return handler.NewWebHandler(listBooks, getBook, deleteBook, importCSV, flashManager,
		cfg.Web.PageSize, cfg.Server.MaxUploadBytes)
}

// provideHealthHandler 健康检查同时检查数据库
func provideHealthHandler(db *gorm.DB) *handler.HealthHandler {
	return handler.NewHealthHandler(func(ctx context.Context) error {
		return mysql.Ping(ctx, db)
	})
}

// newFlashBreaker 保护Redis提示消息存储的熔断器
// 状态变化写日志并更新circuit_breaker_state指标
func newFlashBreaker(cfg *config.Config) *circuitbreaker.CircuitBreaker {
	const name = "flash-redis"
	metrics.SetBreakerState(name, float64(circuitbreaker.StateClosed))

	return circuitbreaker.New(name, circuitbreaker.Config{
		FailureThreshold: cfg.Flash.Breaker.FailureThreshold,
		OpenTimeout:      cfg.Flash.Breaker.OpenTimeout,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			logger.L().Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("熔断器状态变化")
			metrics.SetBreakerState(name, float64(to))
		},
	})
}
