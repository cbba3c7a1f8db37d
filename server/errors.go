package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/elnosh/gopix/pix"
)

// Error is the body returned by the API on failure.
type Error struct {
	Detail string      `json:"detail"`
	Code   pix.ErrCode `json:"code"`
}

func BuildError(detail string, code pix.ErrCode) Error {
	return Error{Detail: detail, Code: code}
}

func (e Error) Error() string {
	return e.Detail
}

var (
	StandardErr         = Error{Detail: "unable to process request", Code: pix.StandardErrCode}
	EmptyBodyErr        = Error{Detail: "request body cannot be empty", Code: pix.StandardErrCode}
	InvalidBodyErr      = Error{Detail: "invalid request body", Code: pix.StandardErrCode}
	BodyTooLargeErr     = Error{Detail: "request body too large", Code: pix.StandardErrCode}
	InvalidFormatErr    = Error{Detail: "invalid format. use png or dataurl", Code: pix.StandardErrCode}
	InvalidRenderOption = Error{Detail: "invalid QR code options", Code: pix.InvalidRenderConfigErrCode}
)

// statusFor maps err to the HTTP status and body to send back.
func statusFor(err error) (int, Error) {
	var apiErr Error
	if errors.As(err, &apiErr) {
		return http.StatusBadRequest, apiErr
	}

	code := pix.Code(err)
	switch {
	case pix.IsInputError(err):
		return http.StatusBadRequest, Error{Detail: err.Error(), Code: code}
	case code == pix.RenderErrCode:
		return http.StatusBadGateway, Error{Detail: err.Error(), Code: code}
	default:
		return http.StatusInternalServerError, StandardErr
	}
}

func (s *Server) writeErr(rw http.ResponseWriter, req *http.Request, err error) {
	status, body := statusFor(err)
	logger := loggerFrom(req.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Debug("bad request", "status", status, "error", err)
	}

	errRes, _ := json.Marshal(body)
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	rw.Write(errRes)
}
