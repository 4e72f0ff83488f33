package mysql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScript = `-- tabelas
CREATE TABLE IF NOT EXISTS autor (
    CODG_AUTOR_PK INT PRIMARY KEY,
    NOME VARCHAR(255)
);

# comentário estilo mysql
INSERT INTO autor VALUES (1, 'a;b');

DELIMITER $$
CREATE PROCEDURE sp_teste(IN p INT)
BEGIN
    SELECT p;
    SELECT p + 1;
END $$
DELIMITER ;

DROP TABLE IF EXISTS lixo
`

func TestSplitStatements(t *testing.T) {
	stmts := SplitStatements(sampleScript)
	require.Len(t, stmts, 4)

	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS autor")
	assert.NotContains(t, stmts[0], "-- tabelas")
	assert.Equal(t, "INSERT INTO autor VALUES (1, 'a;b')", stmts[1], "行中间的分号不拆分")
	assert.Contains(t, stmts[2], "SELECT p;\n    SELECT p + 1;")
	assert.True(t, len(stmts[2]) > 0 && stmts[2][len(stmts[2])-3:] == "END")
	assert.Equal(t, "DROP TABLE IF EXISTS lixo", stmts[3], "末尾没有分号也保留")
}

func TestExecScript(t *testing.T) {
	db := newTestDB(t)

	script := `
CREATE TABLE extra (id INTEGER PRIMARY KEY, nome TEXT);
INSERT INTO extra VALUES (1, 'um');
INSERT INTO extra VALUES (2, 'dois');
`
	n, err := ExecScript(context.Background(), db, script)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var count int64
	require.NoError(t, db.Table("extra").Count(&count).Error)
	assert.Equal(t, int64(2), count)

	n, err = ExecScript(context.Background(), db, "INSERT INTO inexistente VALUES (1);")
	assert.Error(t, err)
	assert.Equal(t, 0, n)
}
