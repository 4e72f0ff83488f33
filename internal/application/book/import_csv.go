package book

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xiebiao/relatorio/internal/domain/book"
	apperrors "github.com/xiebiao/relatorio/pkg/errors"
	"github.com/xiebiao/relatorio/pkg/logger"
	"github.com/xiebiao/relatorio/pkg/metrics"
	"github.com/xiebiao/relatorio/pkg/tracing"
)

// ErrInvalidCSV 文件级错误(表头、编码或CSV语法),整批放弃
var ErrInvalidCSV = apperrors.New(apperrors.ErrCodeInvalidParams, "Erro ao processar arquivo CSV")

// ImportResult 导入结果
type ImportResult struct {
	Processed int        // 成功导入的行数
	Failed    int        // 跳过的行数
	Errors    []RowError // 每个跳过行的原因
}

// RowError 单行失败原因
type RowError struct {
	Line int    // 文件中的行号(表头为第1行)
	Err  string // 错误信息
}

// ImportCSVUseCase CSV批量导入用例
// 设计说明:
// 1. 整个文件在一个事务中,最后提交一次
// 2. 每行一个SAVEPOINT:某行失败只回滚这一行,记录日志后继续下一行
// 3. 同一批次内,同一作者/图书只upsert一次;销售记录每行都写(每行是一次销售)
// 4. 配置了存储过程时,每行整体交给存储过程处理
type ImportCSVUseCase struct {
	bookService book.Service
	books       book.Repository
	authors     book.AuthorRepository
	sales       book.SaleRepository
	tx          book.Transactor
	procedure   book.ImportProcedure // nil表示逐表upsert
}

// NewImportCSVUseCase 创建CSV导入用例
// procedure为nil时使用逐表upsert
func NewImportCSVUseCase(
	bookService book.Service,
	books book.Repository,
	authors book.AuthorRepository,
	sales book.SaleRepository,
	tx book.Transactor,
	procedure book.ImportProcedure,
) *ImportCSVUseCase {
	return &ImportCSVUseCase{
		bookService: bookService,
		books:       books,
		authors:     authors,
		sales:       sales,
		tx:          tx,
		procedure:   procedure,
	}
}

// batchState 批次内已写入的作者/图书
type batchState struct {
	authors     map[uint]bool
	books       map[uint]bool
	authorNames map[string]uint // 小写姓名 → 作者ID
}

// rowMarks 单行新写入的键,行成功后才并入batchState
type rowMarks struct {
	authorID   uint
	bookID     uint
	authorName string
	nameID     uint
}

func (s *batchState) apply(m rowMarks) {
	if m.authorID > 0 {
		s.authors[m.authorID] = true
	}
	if m.bookID > 0 {
		s.books[m.bookID] = true
	}
	if m.authorName != "" {
		s.authorNames[m.authorName] = m.nameID
	}
}

// Execute 导入CSV
// 学习要点:
// 1. 单行失败不会返回error,只计入Failed
// 2. 只有文件级错误(读不了、表头不对、不是UTF-8、CSV语法错误)和提交失败才返回error,此时整批回滚
func (uc *ImportCSVUseCase) Execute(ctx context.Context, r io.Reader) (result *ImportResult, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "ImportCSV")
	start := time.Now()
	defer func() {
		metrics.ObserveHistogram(metrics.CSVImportDuration, time.Since(start).Seconds())
		tracing.EndSpan(span, err)
	}()

	log := logger.FromContext(ctx)

	// 1. 读取表头
	reader := csv.NewReader(skipBOM(r))
	reader.FieldsPerRecord = -1 // 允许列数不一致,缺的列按空值处理
	reader.TrimLeadingSpace = true

	headerRecord, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &ImportResult{}, nil
	}
	if err != nil {
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeInvalidParams, ErrInvalidCSV.Message)
	}
	if err := checkUTF8(headerRecord, 1); err != nil {
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeInvalidParams, ErrInvalidCSV.Message)
	}
	header, err := parseHeader(headerRecord)
	if err != nil {
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeInvalidParams, ErrInvalidCSV.Message)
	}

	format := "simples"
	if header.has(colAuthorID) {
		format = "completo"
	}
	log.Info().Str("formato", format).Bool("procedure", uc.procedure != nil).Msg("开始导入CSV")

	// 2. 整批一个事务
	result = &ImportResult{}
	state := &batchState{
		authors:     make(map[uint]bool),
		books:       make(map[uint]bool),
		authorNames: make(map[string]uint),
	}

	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return apperrors.WrapCode(err, apperrors.ErrCodeInvalidParams, ErrInvalidCSV.Message)
			}
			line, _ := reader.FieldPos(0)
			if err := checkUTF8(record, line); err != nil {
				return apperrors.WrapCode(err, apperrors.ErrCodeInvalidParams, ErrInvalidCSV.Message)
			}

			// 3. 每行一个SAVEPOINT
			var marks rowMarks
			rowErr := uc.tx.Transaction(ctx, func(ctx context.Context) error {
				row, err := parseRow(header, record)
				if err != nil {
					return err
				}
				marks, err = uc.importRow(ctx, row, state)
				return err
			})

			if rowErr != nil {
				result.Failed++
				result.Errors = append(result.Errors, RowError{Line: line, Err: rowErr.Error()})
				metrics.IncCounterVec(metrics.CSVRowsTotal, map[string]string{"result": "failure"})
				log.Warn().Err(rowErr).Int("linha", line).Msg("CSV行导入失败,已跳过")
				continue
			}

			state.apply(marks)
			result.Processed++
			metrics.IncCounterVec(metrics.CSVRowsTotal, map[string]string{"result": "success"})
		}
	})
	if err != nil {
		log.Error().Err(err).Int("processados", result.Processed).Msg("CSV导入中止,整批回滚")
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, ErrInvalidCSV.Message)
	}

	log.Info().
		Int("processados", result.Processed).
		Int("falhas", result.Failed).
		Msg("CSV导入完成")
	return result, nil
}

// importRow 写入一行
func (uc *ImportCSVUseCase) importRow(ctx context.Context, row *csvRow, state *batchState) (rowMarks, error) {
	var marks rowMarks

	// 1. 作者只有姓名时查找或新建
	if row.author == nil && row.authorName != "" {
		key := strings.ToLower(row.authorName)
		id, ok := state.authorNames[key]
		if !ok {
			var err error
			id, err = uc.bookService.ResolveAuthor(ctx, row.authorName)
			if err != nil {
				return marks, err
			}
			marks.authorName, marks.nameID = key, id
		}
		row.book.LinkAuthor(id)
	}

	// 2. 空ID由系统生成(在批次事务内,不会与本批其他行冲突)
	if !row.book.HasID() {
		id, err := uc.books.NextID(ctx)
		if err != nil {
			return marks, err
		}
		row.book.ID = id
	}
	if row.sale != nil {
		row.sale.BookID = row.book.ID
		if row.sale.ID == 0 {
			id, err := uc.sales.NextID(ctx)
			if err != nil {
				return marks, err
			}
			row.sale.ID = id
		}
	}

	// 3. 存储过程模式:整行交给存储过程
	if uc.procedure != nil {
		err := uc.procedure.ImportLine(ctx, &book.ImportLine{
			Author: row.author,
			Book:   row.book,
			Sale:   row.sale,
		})
		return marks, err
	}

	// 4. 逐表upsert:作者、图书每批一次,销售每行一次
	if row.author != nil && !state.authors[row.author.ID] {
		if err := uc.authors.Upsert(ctx, row.author); err != nil {
			return marks, err
		}
		marks.authorID = row.author.ID
	}

	if !state.books[row.book.ID] {
		if err := uc.books.Upsert(ctx, row.book); err != nil {
			return marks, err
		}
		marks.bookID = row.book.ID
	}

	if row.sale != nil {
		if err := uc.sales.Upsert(ctx, row.sale); err != nil {
			return marks, err
		}
	}

	return marks, nil
}

// Summary 页面提示文案
func (r *ImportResult) Summary() string {
	return fmt.Sprintf("%d registros processados com sucesso!", r.Processed)
}
