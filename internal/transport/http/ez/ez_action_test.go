package ez

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"go-gin-marketplace/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

type echoIn struct {
	Name string `json:"name" binding:"required"`
}

type echoOut struct {
	Hello string `json:"hello"`
}

func newEngine(a Action[echoIn, echoOut]) *gin.Engine {
	r := gin.New()
	RegisterAction(New(r.Group("")), a)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStrictJSON(t *testing.T) {
	r := newEngine(Action[echoIn, echoOut]{
		Method: http.MethodPost, Path: "/echo", Binder: BindStrictJSON, Status: http.StatusCreated,
		Handler: func(_ *gin.Context, in *echoIn) (echoOut, error) { return echoOut{Hello: in.Name}, nil },
	})

	w := do(r, http.MethodPost, "/echo", `{"name":"ada"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"hello":"ada"}`, w.Body.String())

	w = do(r, http.MethodPost, "/echo", `{"name":"ada","role":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/echo", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorMapping(t *testing.T) {
	var next error
	r := newEngine(Action[echoIn, echoOut]{
		Method: http.MethodPost, Path: "/x", Binder: BindJSON, Envelope: true,
		Messages: map[int]string{http.StatusNotFound: "Thing not found"},
		Handler:  func(*gin.Context, *echoIn) (echoOut, error) { return echoOut{}, next },
	})

	next = domain.ErrNotFound
	w := do(r, http.MethodPost, "/x", `{"name":"a"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Thing not found"}`, w.Body.String())

	next = domain.Invalid("price", "must be greater than 0")
	w = do(r, http.MethodPost, "/x", `{"name":"a"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"price must be greater than 0"}`, w.Body.String())

	// 5xx 不外泄底层错误
	next = errors.New("dial tcp 10.0.0.5:5432: connection refused")
	w = do(r, http.MethodPost, "/x", `{"name":"a"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal Server Error"}`, w.Body.String())

	next = Forbidden("not yours")
	w = do(r, http.MethodPost, "/x", `{"name":"a"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"not yours"}`, w.Body.String())
}

type noteIn struct{ Note string }

func (n *noteIn) DecodeForm(form *multipart.Form) error {
	if v := form.Value["note"]; len(v) > 0 {
		n.Note = v[0]
	}
	return nil
}

// limitBody 模拟 MaxBodyBytes 对无 Content-Length 请求体的处理
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

func TestOversizedChunkedBodyIs413(t *testing.T) {
	r := gin.New()
	r.Use(limitBody(64))
	g := New(r.Group(""))
	RegisterAction(g, Action[noteIn, echoOut]{
		Method: http.MethodPost, Path: "/form", Binder: BindMultipart, Envelope: true,
		Handler: func(_ *gin.Context, in *noteIn) (echoOut, error) { return echoOut{Hello: in.Note}, nil },
	})
	RegisterAction(g, Action[echoIn, echoOut]{
		Method: http.MethodPost, Path: "/json", Binder: BindStrictJSON, Envelope: true,
		Handler: func(_ *gin.Context, in *echoIn) (echoOut, error) { return echoOut{Hello: in.Name}, nil },
	})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("note", strings.Repeat("x", 1024))
	_ = mw.Close()
	// MultiReader 隐去长度，httptest 不会填 Content-Length
	req := httptest.NewRequest(http.MethodPost, "/form", io.MultiReader(&buf))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	assert.Equal(t, int64(-1), req.ContentLength)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"request body too large"}`, w.Body.String())

	body := `{"name":"` + strings.Repeat("a", 1024) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/json", io.MultiReader(strings.NewReader(body)))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"request body too large"}`, w.Body.String())

	// 上限以内照常
	w = do(r, http.MethodPost, "/json", `{"name":"ada"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}
