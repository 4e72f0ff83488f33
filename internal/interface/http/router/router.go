// Package router 组装gin引擎：中间件、API路由、页面路由和运维端点
package router

import (
	"html/template"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/relatorio/internal/infrastructure/config"
	"github.com/xiebiao/relatorio/internal/interface/http/handler"
	"github.com/xiebiao/relatorio/internal/interface/http/middleware"
)

// TemplateFuncs 页面模板可用的函数
var TemplateFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
	// hasNext 当前页之后是否还有数据
	"hasNext": func(page, size int, total int64) bool {
		return int64((page+1)*size) < total
	},
}

// New 创建gin引擎并注册全部路由
// cfg.Server.TemplatesDir为空时不加载模板(测试里用SetHTMLTemplate注入)
func New(
	cfg *config.Config,
	bookHandler *handler.BookHandler,
	webHandler *handler.WebHandler,
	healthHandler *handler.HealthHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestLogger(),
		middleware.Recovery(),
		middleware.Tracing(),
		middleware.Metrics(),
	)
	if cfg.Server.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = cfg.Server.MaxUploadBytes
	}

	r.SetFuncMap(TemplateFuncs)
	if dir := cfg.Server.TemplatesDir; dir != "" {
		r.LoadHTMLGlob(filepath.Join(dir, "*.html"))
	}

	// 运维端点
	r.GET("/ping", healthHandler.Ping)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 静态文件
	if dir := cfg.Server.StaticDir; dir != "" {
		r.Static("/static", dir)
	}

	// REST API
	api := r.Group(cfg.Server.APIPrefix)
	{
		livros := api.Group("/livros")
		livros.GET("", bookHandler.ListBooks)
		livros.POST("", bookHandler.CreateBook)
		livros.POST("/importar", bookHandler.ImportBook)
		livros.GET("/:id", bookHandler.GetBook)
		livros.PUT("/:id", bookHandler.UpdateBook)
		livros.DELETE("/:id", bookHandler.DeleteBook)
	}

	// 页面
	r.GET("/", webHandler.Index)
	r.GET("/livros/:id/buscar", webHandler.Detail)
	r.POST("/livros/:id/excluir", webHandler.Delete)
	r.POST("/upload_csv", webHandler.UploadCSV)

	return r
}
