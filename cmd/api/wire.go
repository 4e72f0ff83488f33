//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 运行 `wire gen ./cmd/api` 生成wire_gen.go，得到与main.go中buildEngine相同的依赖图。
//
// 核心概念：
// - Provider: 提供依赖的构造函数（如NewBookRepository）
// - Injector: 声明最终要构造的目标类型（*gin.Engine）
// - wire.Bind: 把具体类型绑定到接口（*mysql.TxManager → book.Transactor）

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"gorm.io/gorm"

	appbook "github.com/xiebiao/relatorio/internal/application/book"
	"github.com/xiebiao/relatorio/internal/domain/book"
	"github.com/xiebiao/relatorio/internal/infrastructure/config"
	"github.com/xiebiao/relatorio/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/relatorio/internal/interface/http/flash"
	"github.com/xiebiao/relatorio/internal/interface/http/handler"
	"github.com/xiebiao/relatorio/internal/interface/http/router"
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewBookRepository,
	mysql.NewAuthorRepository,
	mysql.NewSaleRepository,
	mysql.NewTxManager,
	wire.Bind(new(book.Transactor), new(*mysql.TxManager)),
	provideImportProcedure,
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	book.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appbook.NewListBooksUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewCreateBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewImportCSVUseCase,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	provideFlashManager,
	handler.NewBookHandler,
	provideWebHandler,
	provideHealthHandler,
	router.New,
)

// InitializeApp 初始化整个应用
// 配置、数据库和提示消息存储由main创建(需要控制关闭顺序)，作为参数传入
func InitializeApp(cfg *config.Config, db *gorm.DB, flashStore flash.Store) (*gin.Engine, error) {
	wire.Build(
		repositorySet,
		domainSet,
		applicationSet,
		handlerSet,
	)
	return nil, nil
}
