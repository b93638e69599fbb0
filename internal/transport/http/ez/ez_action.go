package ez

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	resp "go-gin-marketplace/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON       Binder = "json"        // 宽松 JSON，多余字段忽略
	BindStrictJSON Binder = "strict_json" // 出现未知字段直接 400
	BindQuery      Binder = "query"
	BindMultipart  Binder = "multipart" // 入参需实现 FormDecoder
	BindNone       Binder = "none"      // 自己从 c.Param 取
)

// FormDecoder multipart 入参自行解析字段/文件
type FormDecoder interface {
	DecodeForm(form *multipart.Form) error
}

// 统一错误对象
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: http.StatusNotFound, Msg: msg} }
func TooLarge(msg string) error     { return &AErr{Code: http.StatusRequestEntityTooLarge, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method   string
	Path     string
	Binder   Binder
	Status   int            // 成功状态码，默认 200
	Envelope bool           // 失败体带 success:false
	Messages map[int]string // 按状态码覆盖错误文案，如 404 → "Product not found"
	Handler  func(c *gin.Context, in *I) (O, error)
}

// RegisterAction mw 在 handler 之前执行（鉴权等）
func RegisterAction[I any, O any](e EZ, a Action[I, O], mw ...gin.HandlerFunc) {
	h := func(c *gin.Context) {
		var in I
		if err := bind(c, a.Binder, &in); err != nil {
			abort(c, a.Envelope, a.Messages, err)
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			abort(c, a.Envelope, a.Messages, err)
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		c.JSON(status, out)
	}

	handlers := append(append([]gin.HandlerFunc{}, mw...), h)
	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, handlers...)
	case http.MethodPut:
		e.g.PUT(a.Path, handlers...)
	case http.MethodDelete:
		e.g.DELETE(a.Path, handlers...)
	default:
		e.g.POST(a.Path, handlers...)
	}
}

func bind(c *gin.Context, b Binder, in any) error {
	var err error
	switch b {
	case BindJSON:
		err = c.ShouldBindJSON(in)
	case BindStrictJSON:
		err = bindStrictJSON(c, in)
	case BindQuery:
		err = c.ShouldBindQuery(in)
	case BindMultipart:
		dec, ok := in.(FormDecoder)
		if !ok {
			return Internal("binder misconfigured", errors.New("input does not implement FormDecoder"))
		}
		var form *multipart.Form
		if form, err = c.MultipartForm(); err == nil {
			err = dec.DecodeForm(form)
		}
	default:
		return nil
	}
	if err == nil {
		return nil
	}
	// 无 Content-Length 的请求体读到上限时才会撞上 MaxBytesReader
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return TooLarge("request body too large")
	}
	var ae *AErr
	if errors.As(err, &ae) || resp.StatusOf(err) != http.StatusInternalServerError {
		return err
	}
	return BadRequest(err.Error())
}

func bindStrictJSON(c *gin.Context, in any) error {
	if c.Request.Body == nil {
		return errors.New("request body is empty")
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(in); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(in)
}

// Abort 给不走 RegisterAction 的路由（如直接输出二进制）复用同一套错误映射
func Abort(c *gin.Context, err error, messages map[int]string) {
	abort(c, false, messages, err)
}

// abort 统一错误映射；5xx 的原始错误挂到 gin 上下文，由访问日志输出
func abort(c *gin.Context, envelope bool, messages map[int]string, err error) {
	var status int
	var msg string
	var ae *AErr
	if errors.As(err, &ae) {
		status, msg = ae.Code, ae.Error()
	} else {
		status = resp.StatusOf(err)
		msg = err.Error()
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		msg = http.StatusText(status)
	}
	if m, ok := messages[status]; ok {
		msg = m
	}
	if envelope {
		c.AbortWithStatusJSON(status, resp.EnvelopeError(status, msg))
		return
	}
	c.AbortWithStatusJSON(status, resp.Error(msg))
}
