package middleware

import (
	"errors"

	"github.com/emicklei/go-restful/v3"
)

var ErrEmptyQuestion = errors.New("question must not be empty")

type ErrorResponse struct {
	Error string `json:"error" description:"Error message"`
	Code  int    `json:"code" description:"HTTP status code"`
}

func HandleError(resp *restful.Response, err error, code int) {
	_ = resp.WriteHeaderAndEntity(code, ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}
