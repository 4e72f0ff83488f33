package flash

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("取出后清空", func(t *testing.T) {
		s := NewMemoryStore(time.Minute)
		require.NoError(t, s.Push(ctx, "a", "1"))
		require.NoError(t, s.Push(ctx, "a", "2"))

		got, err := s.Pop(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, got)

		got, err = s.Pop(ctx, "a")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("过期后取不到", func(t *testing.T) {
		s := NewMemoryStore(time.Minute)
		now := time.Now()
		s.now = func() time.Time { return now }
		require.NoError(t, s.Push(ctx, "a", "1"))

		s.now = func() time.Time { return now.Add(2 * time.Minute) }
		got, err := s.Pop(ctx, "a")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestManager(t *testing.T) {
	m := NewManager(NewMemoryStore(time.Minute), "flash_test", time.Minute)

	r := gin.New()
	r.POST("/acao", func(c *gin.Context) {
		m.Success(c, "Livro excluído com sucesso!")
		m.Error(c, "Livro não encontrado")
		c.Redirect(http.StatusFound, "/")
	})
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, m.Pop(c))
	})

	t.Run("重定向后显示一次", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/acao", nil))
		require.Equal(t, http.StatusFound, w.Code)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "flash_test", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)

		get := func() string {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(cookies[0])
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			return w.Body.String()
		}

		body := get()
		assert.Contains(t, body, `"category":"success"`)
		assert.Contains(t, body, "Livro excluído com sucesso!")
		assert.Contains(t, body, "Livro não encontrado")

		assert.Equal(t, "[]", get())
	})

	t.Run("没有cookie时为空", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "null", w.Body.String())
	})
}
