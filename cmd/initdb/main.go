// initdb 执行建库脚本：建表、视图view_relatorio_livros和存储过程sp_importar_linha
//
// 用法：
//
//	go run ./cmd/initdb -schema scripts/schema.sql
//
// 连接参数与服务相同(config.yaml、env文件、DB_*环境变量)，目标库需已存在。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/xiebiao/relatorio/internal/infrastructure/config"
	"github.com/xiebiao/relatorio/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/relatorio/pkg/logger"
)

func main() {
	schemaPath := flag.String("schema", "scripts/schema.sql", "建库脚本路径")
	timeout := flag.Duration("timeout", 2*time.Minute, "整个脚本的执行超时")
	flag.Parse()

	// 1. 配置与日志
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if _, err := logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: "stderr",
		Caller: cfg.Log.EnableCaller,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	log := logger.L()

	// 2. 读取脚本
	script, err := os.ReadFile(*schemaPath)
	if err != nil {
		log.Fatal().Err(err).Str("schema", *schemaPath).Msg("读取建库脚本失败")
	}

	// 3. 连接数据库(脚本负责建表，这里不做AutoMigrate)
	cfg.Database.AutoMigrate = false
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("连接数据库失败")
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// 4. 逐条执行
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	n, err := mysql.ExecScript(ctx, db, string(script))
	if err != nil {
		log.Error().Err(err).Int("executados", n).Msg("Falha ao inicializar banco")
		os.Exit(1)
	}
	log.Info().Int("executados", n).Str("database", cfg.Database.DBName).Msg("Banco de dados inicializado com sucesso!")
}
