package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	appbook "github.com/xiebiao/relatorio/internal/application/book"
	"github.com/xiebiao/relatorio/internal/domain/book"
	"github.com/xiebiao/relatorio/internal/infrastructure/config"
	"github.com/xiebiao/relatorio/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/relatorio/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/relatorio/internal/interface/http/flash"
	"github.com/xiebiao/relatorio/internal/interface/http/handler"
	"github.com/xiebiao/relatorio/internal/interface/http/router"
	"github.com/xiebiao/relatorio/pkg/logger"
	"github.com/xiebiao/relatorio/pkg/metrics"
	"github.com/xiebiao/relatorio/pkg/tracing"

	_ "github.com/xiebiao/relatorio/docs" // Swagger文档(swag init生成)
)

// @title        Monitor de Relatórios API
// @version      1.0
// @description  图书目录：列表、搜索、增删改、CSV批量导入
// @BasePath     /

// main 主程序入口
// 说明：手动依赖注入，依赖图与wire.go中的Provider Set一致
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	closer, err := logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
		Caller: cfg.Log.EnableCaller,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	log := logger.L()

	log.Info().
		Int("port", cfg.Server.Port).
		Str("mode", cfg.Server.Mode).
		Str("database", fmt.Sprintf("%s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)).
		Bool("redis", cfg.Redis.Enabled).
		Bool("procedure", cfg.Importer.UseProcedure).
		Msg("配置加载成功")

	// 3. 可观测性
	metrics.InitMetrics()
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("初始化Tracing失败，继续运行")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(ctx)
			}()
		}
	}

	// 4. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("初始化数据库失败")
	}

	// 5. 提示消息存储：启用Redis时多实例共享(熔断时退回进程内)，否则进程内
	var flashStore flash.Store
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("初始化Redis失败")
		}
		defer client.Close()
		flashStore = flash.NewGuardedStore(
			redis.NewFlashStore(client, cfg.Flash.TTL),
			flash.NewMemoryStore(cfg.Flash.TTL),
			newFlashBreaker(cfg),
		)
	} else {
		flashStore = flash.NewMemoryStore(cfg.Flash.TTL)
	}

	// 6. 依赖注入(手动组装)
	engine, err := buildEngine(cfg, db, flashStore)
	if err != nil {
		log.Fatal().Err(err).Msg("组装应用失败")
	}

	// 7. 启动服务
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("服务启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("启动服务失败")
		}
	}()

	// 8. 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("服务关闭超时")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("服务已退出")
}

// buildEngine 组装依赖链
// 学习要点：Repository ← Service ← UseCase ← Handler ← Router
func buildEngine(cfg *config.Config, db *gorm.DB, flashStore flash.Store) (*gin.Engine, error) {
	// 基础设施层
	bookRepo := mysql.NewBookRepository(db)
	authorRepo := mysql.NewAuthorRepository(db)
	saleRepo := mysql.NewSaleRepository(db)
	txManager := mysql.NewTxManager(db)
	procedure, err := provideImportProcedure(cfg, db)
	if err != nil {
		return nil, err
	}

	// 领域层
	bookService := book.NewService(bookRepo, authorRepo, txManager)

	// 应用层
	listBooks := appbook.NewListBooksUseCase(bookService)
	getBook := appbook.NewGetBookUseCase(bookService)
	createBook := appbook.NewCreateBookUseCase(bookService)
	updateBook := appbook.NewUpdateBookUseCase(bookService)
	deleteBook := appbook.NewDeleteBookUseCase(bookService)
	importCSV := appbook.NewImportCSVUseCase(bookService, bookRepo, authorRepo, saleRepo, txManager, procedure)

	// 接口层
	bookHandler := handler.NewBookHandler(listBooks, getBook, createBook, updateBook, deleteBook)
	webHandler := provideWebHandler(cfg, listBooks, getBook, deleteBook, importCSV, provideFlashManager(cfg, flashStore))
	healthHandler := provideHealthHandler(db)

	return router.New(cfg, bookHandler, webHandler, healthHandler), nil
}
