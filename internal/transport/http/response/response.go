package response

type ErrorResp struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type MessageResp struct {
	Message string `json:"message"`
}

func Error(msg string) ErrorResp { return ErrorResp{Error: msg} }

// EnvelopeError 商品创建接口的失败体带 success:false；4xx 用 message，5xx 用 error
func EnvelopeError(status int, msg string) ErrorResp {
	f := false
	if status < 500 {
		return ErrorResp{Success: &f, Message: msg}
	}
	return ErrorResp{Success: &f, Error: msg}
}

func Message(msg string) MessageResp { return MessageResp{Message: msg} }
