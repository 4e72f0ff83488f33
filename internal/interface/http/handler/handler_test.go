package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbook "github.com/xiebiao/relatorio/internal/application/book"
	"github.com/xiebiao/relatorio/internal/domain/book"
	"github.com/xiebiao/relatorio/internal/domain/book/booktest"
	"github.com/xiebiao/relatorio/internal/infrastructure/config"
	"github.com/xiebiao/relatorio/internal/interface/http/flash"
	"github.com/xiebiao/relatorio/internal/interface/http/handler"
	"github.com/xiebiao/relatorio/internal/interface/http/router"
	apperrors "github.com/xiebiao/relatorio/pkg/errors"
)

// 测试用模板：只输出断言需要的内容
const testTemplates = `
{{define "index.html"}}{{range .mensagens}}[{{.Category}}] {{.Text}}
{{end}}total={{.total}}
{{range .livros}}<li>{{.ID}} {{.Titulo}} {{.Autor}} {{.TotalVendas}}</li>
{{end}}{{end}}
{{define "livro_detalhe.html"}}<h1>{{.livro.Titulo}}</h1><p>{{.livro.Autor}}</p>{{end}}
`

type testServer struct {
	engine  *gin.Engine
	store   *booktest.Store
	cookie  *http.Cookie
	pingErr error
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := booktest.NewStore()
	svc := book.NewService(store, store.Authors(), store)

	listUC := appbook.NewListBooksUseCase(svc)
	getUC := appbook.NewGetBookUseCase(svc)
	createUC := appbook.NewCreateBookUseCase(svc)
	updateUC := appbook.NewUpdateBookUseCase(svc)
	deleteUC := appbook.NewDeleteBookUseCase(svc)
	importUC := appbook.NewImportCSVUseCase(svc, store, store.Authors(), store.Sales(), store, nil)

	cfg := &config.Config{}
	cfg.Server.APIPrefix = "/api"
	cfg.Server.Mode = "test"

	ts := &testServer{store: store}
	flashManager := flash.NewManager(flash.NewMemoryStore(time.Minute), "relatorio_flash", time.Minute)

	ts.engine = router.New(cfg,
		handler.NewBookHandler(listUC, getUC, createUC, updateUC, deleteUC),
		handler.NewWebHandler(listUC, getUC, deleteUC, importUC, flashManager, 10, 1<<20),
		handler.NewHealthHandler(func(context.Context) error { return ts.pingErr }),
	)
	ts.engine.SetHTMLTemplate(template.Must(template.New("").Funcs(router.TemplateFuncs).Parse(testTemplates)))
	return ts
}

func (ts *testServer) do(method, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if ts.cookie != nil {
		req.AddCookie(ts.cookie)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	ts.keepCookie(w)
	return w
}

func (ts *testServer) upload(filename, content string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		part, _ := mw.CreateFormFile("arquivo", filename)
		_, _ = part.Write([]byte(content))
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload_csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	ts.keepCookie(w)
	return w
}

func (ts *testServer) keepCookie(w *httptest.ResponseRecorder) {
	for _, c := range w.Result().Cookies() {
		if c.Name == "relatorio_flash" {
			ts.cookie = c
		}
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestBookAPI(t *testing.T) {
	t.Run("新建、查询、删除、再查询", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(http.MethodPost, "/api/livros", `{"titulo":"Dom Casmurro","autor":"Machado de Assis"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		created := decode(t, w)
		assert.Equal(t, float64(1), created["id"])
		assert.Equal(t, "Dom Casmurro", created["titulo"])
		assert.Equal(t, "Machado de Assis", created["autor"])

		w = ts.do(http.MethodGet, "/api/livros/1", "")
		require.Equal(t, http.StatusOK, w.Code)
		got := decode(t, w)
		assert.Equal(t, "Dom Casmurro", got["titulo"])
		assert.Equal(t, "Machado de Assis", got["autor"])

		w = ts.do(http.MethodDelete, "/api/livros/1", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Livro removido com sucesso", decode(t, w)["mensagem"])

		w = ts.do(http.MethodGet, "/api/livros/1", "")
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Livro não encontrado", decode(t, w)["erro"])
	})

	t.Run("列表分页结构", func(t *testing.T) {
		ts := newTestServer(t)
		for i := 0; i < 12; i++ {
			w := ts.do(http.MethodPost, "/api/livros", `{"titulo":"Livro"}`)
			require.Equal(t, http.StatusCreated, w.Code)
		}

		w := ts.do(http.MethodGet, "/api/livros?pagina=1&limite=5", "")
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, float64(12), body["total"])
		assert.Equal(t, float64(1), body["pagina"])
		assert.Equal(t, float64(5), body["limite"])
		assert.Len(t, body["livros"], 5)

		w = ts.do(http.MethodGet, "/api/livros?pagina=abc&limite=", "")
		require.Equal(t, http.StatusOK, w.Code)
		body = decode(t, w)
		assert.Equal(t, float64(0), body["pagina"])
		assert.Equal(t, float64(10), body["limite"])
	})

	t.Run("空库列表为空数组", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(http.MethodGet, "/api/livros", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"livros":[]`)
	})

	t.Run("列表读取失败返回500", func(t *testing.T) {
		ts := newTestServer(t)
		ts.store.ListErr = apperrors.Wrap(errors.New("connection refused"), "Erro ao carregar livros")

		w := ts.do(http.MethodGet, "/api/livros", "")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Erro ao carregar livros: connection refused", decode(t, w)["erro"])
	})

	t.Run("非数字ID返回404", func(t *testing.T) {
		ts := newTestServer(t)

		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/livros/abc", "").Code)
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, "/api/livros/abc", "").Code)
	})

	t.Run("非法JSON返回400", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(http.MethodPost, "/api/livros", `{"titulo":`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "JSON inválido", decode(t, w)["erro"])
	})

	t.Run("更新不存在的图书返回404且不写入", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(http.MethodPut, "/api/livros/7", `{"titulo":"Fantasma"}`)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, 0, ts.store.BookCount())
	})

	t.Run("更新整行覆盖", func(t *testing.T) {
		ts := newTestServer(t)
		require.Equal(t, http.StatusCreated,
			ts.do(http.MethodPost, "/api/livros", `{"id":3,"titulo":"Helena","genero":"Romance"}`).Code)

		w := ts.do(http.MethodPut, "/api/livros/3", `{"titulo":"Helena (2a ed.)"}`)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, float64(3), body["id"])
		assert.Equal(t, "Helena (2a ed.)", body["titulo"])
		assert.NotContains(t, body, "genero")
	})

	t.Run("删除不存在的图书返回404", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(http.MethodDelete, "/api/livros/99", "")
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("JSON导入返回提示和ID", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(http.MethodPost, "/api/livros/importar", `{"titulo":"Iracema","autor":"José de Alencar"}`)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Livro importado com sucesso", body["mensagem"])
		assert.Equal(t, float64(1), body["id"])

		w = ts.do(http.MethodPost, "/api/livros/importar", "")
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/ping", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", decode(t, w)["message"])
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	ts.pingErr = apperrors.WrapCode(errors.New("dial tcp"), apperrors.ErrCodeConnectivity, apperrors.ErrConnectivity.Message)
	w = ts.do(http.MethodGet, "/ping", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decode(t, w)["erro"], "Erro ao conectar ao MySQL")
}

func TestWebPages(t *testing.T) {
	t.Run("首页列出图书并支持搜索", func(t *testing.T) {
		ts := newTestServer(t)
		ts.do(http.MethodPost, "/api/livros", `{"titulo":"Dom Casmurro","autor":"Machado de Assis"}`)
		ts.do(http.MethodPost, "/api/livros", `{"titulo":"Iracema"}`)

		w := ts.do(http.MethodGet, "/", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Dom Casmurro Machado de Assis")
		assert.Contains(t, w.Body.String(), "Iracema")

		w = ts.do(http.MethodGet, "/?busca=casmurro", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Dom Casmurro")
		assert.NotContains(t, w.Body.String(), "Iracema")
	})

	t.Run("读取失败时降级为空列表", func(t *testing.T) {
		ts := newTestServer(t)
		ts.store.ListErr = errors.New("connection refused")

		w := ts.do(http.MethodGet, "/", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "total=0")
	})

	t.Run("详情页", func(t *testing.T) {
		ts := newTestServer(t)
		ts.do(http.MethodPost, "/api/livros", `{"titulo":"Dom Casmurro","autor":"Machado de Assis"}`)

		w := ts.do(http.MethodGet, "/livros/1/buscar", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "<h1>Dom Casmurro</h1>")

		w = ts.do(http.MethodGet, "/livros/9/buscar", "")
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Contains(t, ts.do(http.MethodGet, "/", "").Body.String(), "[error] Livro não encontrado")
	})

	t.Run("删除后重定向并显示提示", func(t *testing.T) {
		ts := newTestServer(t)
		ts.do(http.MethodPost, "/api/livros", `{"titulo":"Dom Casmurro"}`)

		w := ts.do(http.MethodPost, "/livros/1/excluir", "")
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))

		page := ts.do(http.MethodGet, "/", "").Body.String()
		assert.Contains(t, page, "[success] Livro excluído com sucesso!")
		assert.Contains(t, page, "total=0")

		// 提示只显示一次
		assert.NotContains(t, ts.do(http.MethodGet, "/", "").Body.String(), "Livro excluído")

		ts.do(http.MethodPost, "/livros/1/excluir", "")
		assert.Contains(t, ts.do(http.MethodGet, "/", "").Body.String(), "[error] Livro não encontrado")
	})

	t.Run("上传CSV", func(t *testing.T) {
		ts := newTestServer(t)
		csv := "id,titulo,autor\n1,Dom Casmurro,Machado de Assis\n2,Iracema,José de Alencar\n"

		w := ts.upload("livros.csv", csv)
		require.Equal(t, http.StatusSeeOther, w.Code)

		page := ts.do(http.MethodGet, "/", "").Body.String()
		assert.Contains(t, page, "[success] 2 registros processados com sucesso!")
		assert.Equal(t, 2, ts.store.BookCount())
	})

	t.Run("没有选择文件", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.upload("", "")
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Contains(t, ts.do(http.MethodGet, "/", "").Body.String(), "[error] Nenhum arquivo selecionado")

		w = ts.upload("vazio.csv", "")
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Contains(t, ts.do(http.MethodGet, "/", "").Body.String(), "[error] Nenhum arquivo selecionado")
	})

	t.Run("CSV表头错误", func(t *testing.T) {
		ts := newTestServer(t)

		ts.upload("ruim.csv", "id,autor\n1,Machado\n")
		assert.Contains(t, ts.do(http.MethodGet, "/", "").Body.String(), "[error] Erro ao processar arquivo CSV: cabeçalho sem coluna TITULO")
	})

	t.Run("非UTF-8文件不导入任何行", func(t *testing.T) {
		ts := newTestServer(t)

		ts.upload("latin1.csv", "id,titulo,autor\n1,Mem\xf3rias P\xf3stumas,Machado de Assis\n")
		page := ts.do(http.MethodGet, "/", "").Body.String()
		assert.Contains(t, page, "[error] Erro ao processar arquivo CSV: linha 2: arquivo não está em UTF-8")
		assert.Equal(t, 0, ts.store.BookCount())
	})
}
