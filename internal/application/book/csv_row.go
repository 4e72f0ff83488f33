package book

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xiebiao/relatorio/internal/domain/book"
)

// csvColumn CSV列的规范名称
type csvColumn int

const (
	colAuthorID csvColumn = iota
	colAuthorName
	colBirthDate
	colAuthorCity
	colBookID
	colTitle
	colGenre
	colSynopsis
	colSaleID
	colSaleCity
	colQuantity
)

// headerAliases 表头(大写)→ 规范列
// 完整格式:CODG_AUTOR_PK,NOME,DATA_NASCIMENTO,CIDADE,CODG_LIVRO_PK,TITULO,GENERO,SINOPSE,CODG_VENDA_PK,LOCAL,QUANTIDADE
// 简化格式:id,titulo,autor
// 简介列同时接受SINOPSE和既有库中的拼写SINOSPE
var headerAliases = map[string]csvColumn{
	"CODG_AUTOR_PK":   colAuthorID,
	"NOME":            colAuthorName,
	"AUTOR":           colAuthorName,
	"DATA_NASCIMENTO": colBirthDate,
	"CIDADE":          colAuthorCity,
	"CODG_LIVRO_PK":   colBookID,
	"ID":              colBookID,
	"TITULO":          colTitle,
	"GENERO":          colGenre,
	"SINOPSE":         colSynopsis,
	"SINOSPE":         colSynopsis,
	"CODG_VENDA_PK":   colSaleID,
	"LOCAL":           colSaleCity,
	"QUANTIDADE":      colQuantity,
}

// birthDateLayouts 出生日期接受的格式
var birthDateLayouts = []string{"2006-01-02", "02/01/2006"}

// csvHeader 规范列 → 记录中的下标
type csvHeader map[csvColumn]int

// parseHeader 解析表头(去空白、忽略大小写),未知列忽略
func parseHeader(record []string) (csvHeader, error) {
	h := make(csvHeader)
	for i, name := range record {
		col, ok := headerAliases[strings.ToUpper(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		if _, dup := h[col]; !dup {
			h[col] = i
		}
	}
	if _, ok := h[colTitle]; !ok {
		return nil, fmt.Errorf("cabeçalho sem coluna TITULO")
	}
	return h, nil
}

// has 表头中是否存在该列
func (h csvHeader) has(col csvColumn) bool {
	_, ok := h[col]
	return ok
}

// get 取某列的值(去空白),列不存在或记录过短时为空
func (h csvHeader) get(record []string, col csvColumn) string {
	i, ok := h[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// csvRow 解析后的一行
// ID为0表示需要生成
type csvRow struct {
	author     *book.Author // 带ID的作者(完整格式)
	authorName string       // 只有姓名(简化格式或作者ID为空)
	book       *book.Book
	sale       *book.Sale // 没有销售数据时为nil
}

// parseRow 类型转换,任何字段转换失败整行作废
func parseRow(h csvHeader, record []string) (*csvRow, error) {
	row := &csvRow{}

	// 1. 图书
	bookID, err := parseID(h.get(record, colBookID), "CODG_LIVRO_PK")
	if err != nil {
		return nil, err
	}
	row.book = book.NewBook(bookID,
		h.get(record, colTitle),
		h.get(record, colGenre),
		h.get(record, colSynopsis),
		nil,
	)

	// 2. 作者
	authorID, err := parseID(h.get(record, colAuthorID), "CODG_AUTOR_PK")
	if err != nil {
		return nil, err
	}
	name := h.get(record, colAuthorName)
	if authorID > 0 {
		birth, err := parseBirthDate(h.get(record, colBirthDate))
		if err != nil {
			return nil, err
		}
		row.author = book.NewAuthor(authorID, name, birth, h.get(record, colAuthorCity))
		row.book.LinkAuthor(authorID)
	} else {
		row.authorName = name
	}

	// 3. 销售(任一销售列有值才算有销售数据)
	saleIDText := h.get(record, colSaleID)
	saleCity := h.get(record, colSaleCity)
	qtyText := h.get(record, colQuantity)
	if saleIDText != "" || saleCity != "" || qtyText != "" {
		saleID, err := parseID(saleIDText, "CODG_VENDA_PK")
		if err != nil {
			return nil, err
		}
		qty := 0
		if qtyText != "" {
			qty, err = strconv.Atoi(qtyText)
			if err != nil {
				return nil, fmt.Errorf("QUANTIDADE inválida: %q", qtyText)
			}
		}
		row.sale = &book.Sale{ID: saleID, City: saleCity, Quantity: qty}
	}

	return row, nil
}

// parseID 空值返回0(由系统生成),非数字或非正数报错
func parseID(text, column string) (uint, error) {
	if text == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(text, 10, 32)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("%s inválido: %q", column, text)
	}
	return uint(v), nil
}

// parseBirthDate 空值返回nil
func parseBirthDate(text string) (*time.Time, error) {
	if text == "" {
		return nil, nil
	}
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("DATA_NASCIMENTO inválida: %q", text)
}

// utf8BOM Excel导出的CSV常带BOM
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM 去掉开头的UTF-8 BOM
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// checkUTF8 文件必须是UTF-8(可带BOM),其他编码按文件级错误处理
func checkUTF8(record []string, line int) error {
	for _, field := range record {
		if !utf8.ValidString(field) {
			return fmt.Errorf("linha %d: arquivo não está em UTF-8", line)
		}
	}
	return nil
}
