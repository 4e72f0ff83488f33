package mysql

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/xiebiao/relatorio/pkg/logger"
)

const defaultDelimiter = ";"

// SplitStatements 把SQL脚本拆成单条语句
// 教学要点:
// 1. 驱动默认不允许一次执行多条语句,脚本必须逐条执行
// 2. 存储过程体内部有分号,需要识别mysql客户端的 DELIMITER 指令:
//    DELIMITER $$ 之后以 $$ 结束语句,DELIMITER ; 恢复
// 3. 语句结束符必须位于行尾;整行的 -- 注释在语句开始前会被跳过
func SplitStatements(script string) []string {
	var (
		statements []string
		buf        strings.Builder
		delimiter  = defaultDelimiter
	)

	scanner := bufio.NewScanner(strings.NewReader(script))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if buf.Len() == 0 {
			if trimmed == "" || strings.HasPrefix(trimmed, "--") || strings.HasPrefix(trimmed, "#") {
				continue
			}
			if fields := strings.Fields(trimmed); len(fields) == 2 && strings.EqualFold(fields[0], "DELIMITER") {
				delimiter = fields[1]
				continue
			}
		}

		buf.WriteString(line)
		buf.WriteByte('\n')

		if strings.HasSuffix(trimmed, delimiter) {
			stmt := strings.TrimSpace(buf.String())
			stmt = strings.TrimSpace(strings.TrimSuffix(stmt, delimiter))
			if stmt != "" {
				statements = append(statements, stmt)
			}
			buf.Reset()
		}
	}

	// 末尾没有结束符的语句
	if rest := strings.TrimSpace(buf.String()); rest != "" {
		statements = append(statements, rest)
	}
	return statements
}

// ExecScript 逐条执行脚本,遇到第一条失败的语句即停止
func ExecScript(ctx context.Context, db *gorm.DB, script string) (int, error) {
	statements := SplitStatements(script)
	for i, stmt := range statements {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return i, fmt.Errorf("执行第%d条语句失败(%s): %w", i+1, preview(stmt), err)
		}
		logger.FromContext(ctx).Debug().Int("n", i+1).Str("sql", preview(stmt)).Msg("语句已执行")
	}
	return len(statements), nil
}

// preview 截取语句开头用于日志
func preview(stmt string) string {
	runes := []rune(strings.Join(strings.Fields(stmt), " "))
	if len(runes) > 60 {
		return string(runes[:60]) + "..."
	}
	return string(runes)
}
