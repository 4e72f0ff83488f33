package mysql

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"

	apperrors "github.com/xiebiao/relatorio/pkg/errors"
)

// MySQL服务端错误码中属于"连不上/登录不了"的部分
// - 1040: Too many connections
// - 1045: Access denied
// - 1049: Unknown database
// - 1129: Host is blocked
var connectivityErrorNumbers = map[uint16]bool{
	1040: true,
	1045: true,
	1049: true,
	1129: true,
}

// isConnectivityError 判断是否为连接层错误（与"连上之后执行失败"区分开）
func isConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysqldriver.ErrInvalidConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return connectivityErrorNumbers[myErr.Number]
	}
	return false
}

// wrapDBError 把驱动错误归类为Connectivity或Persistence
func wrapDBError(err error, message string) error {
	if err == nil {
		return nil
	}
	if isConnectivityError(err) {
		return apperrors.WrapCode(err, apperrors.ErrCodeConnectivity, message)
	}
	return apperrors.Wrap(err, message)
}

// escapeLike 转义LIKE通配符，配合 ESCAPE '!' 使用
// 用户输入的 % 和 _ 按字面匹配
func escapeLike(term string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(term)
}
