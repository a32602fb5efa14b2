package rpc

// Error is a JSON-RPC error in the response envelope.
type Error struct {
	Code    int    `json:"error_code"`
	Name    string `json:"error"`
	Message string `json:"error_message"`
}

// Error codes mirrored into the "error_code" response field.
const (
	CodeUnknownMethod = 32
	CodeInvalidParams = 31
	CodeNotFound      = 19
	CodeInternal      = 73
	CodeNotSupported  = 74
	CodeForbidden     = 75
)

func NewError(code int, name, message string) *Error {
	return &Error{Code: code, Name: name, Message: message}
}

func ErrUnknownMethod(method string) *Error {
	return NewError(CodeUnknownMethod, "unknownCmd", "Unknown method: "+method)
}

func ErrInvalidParams(message string) *Error {
	return NewError(CodeInvalidParams, "invalidParams", message)
}

func ErrNotFound(message string) *Error {
	return NewError(CodeNotFound, "entryNotFound", message)
}

func ErrInternal(message string) *Error {
	return NewError(CodeInternal, "internal", message)
}

func ErrNotSupported(message string) *Error {
	return NewError(CodeNotSupported, "notSupported", message)
}

func ErrForbidden(message string) *Error {
	return NewError(CodeForbidden, "forbidden", message)
}
