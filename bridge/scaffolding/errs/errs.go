// Package errs provides types and support related to web error
// functionality.
package errs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
)

// ErrCode represents an error code in the system.
type ErrCode struct {
	value int
}

// Value returns the integer value of the error code.
func (ec ErrCode) Value() int {
	return ec.value
}

// String returns the string representation of the error code.
func (ec ErrCode) String() string {
	return codeNames[ec.value]
}

// MarshalText implements encoding.TextMarshaler so codes serialize by
// name.
func (ec ErrCode) MarshalText() ([]byte, error) {
	return []byte(ec.String()), nil
}

var (
	OK               = ErrCode{value: 0}
	InvalidArgument  = ErrCode{value: 1}
	NotFound         = ErrCode{value: 2}
	Conflict         = ErrCode{value: 3}
	Unauthenticated  = ErrCode{value: 4}
	PermissionDenied = ErrCode{value: 5}
	Internal         = ErrCode{value: 6}
	InternalOnlyLog  = ErrCode{value: 7}
)

var codeNames = map[int]string{
	0: "ok",
	1: "invalid_argument",
	2: "not_found",
	3: "conflict",
	4: "unauthenticated",
	5: "permission_denied",
	6: "internal",
	7: "internal_only_log",
}

var httpStatusByCode = map[int]int{
	0: http.StatusOK,
	1: http.StatusBadRequest,
	2: http.StatusNotFound,
	3: http.StatusConflict,
	4: http.StatusUnauthorized,
	5: http.StatusForbidden,
	6: http.StatusInternalServerError,
	7: http.StatusInternalServerError,
}

// Error represents an error in the system.
type Error struct {
	Code     ErrCode `json:"code"`
	Message  string  `json:"message"`
	FuncName string  `json:"-"`
	FileName string  `json:"-"`
}

// New constructs an error based on an app error.
func New(code ErrCode, err error) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Code:     code,
		Message:  err.Error(),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// Newf constructs an error based on a error message.
func Newf(code ErrCode, format string, v ...any) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, v...),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Encode implements the web Encoder interface.
func (e *Error) Encode() ([]byte, string, error) {
	type response struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}

	data, err := json.Marshal(response{
		Code:    e.Code.String(),
		Message: e.Message,
	})
	return data, "application/json", err
}

// HTTPStatus maps the error code onto an HTTP status code.
func (e *Error) HTTPStatus() int {
	status, ok := httpStatusByCode[e.Code.Value()]
	if !ok {
		return http.StatusInternalServerError
	}
	return status
}
