// Package handler provides HTTP request handlers for the application.
package handler

import (
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/insurang/lead-funnel/internal/service"
	"github.com/insurang/lead-funnel/internal/validation"
)

const (
	errorCodeInvalidRequest   = "INVALID_REQUEST"
	errorCodeValidationFailed = "VALIDATION_FAILED"
	errorCodeNotFound         = "NOT_FOUND"
	errorCodeInternal         = "INTERNAL_ERROR"
	errorCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
)

type Handler struct {
	service *service.Service
	logger  *zap.Logger
}

func NewHandler(service *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// userMessages maps error codes to the generic Korean text shown to
// visitors on the public funnel endpoints. Admin responses carry the
// machine code only.
var userMessages = map[string]string{
	errorCodeInvalidRequest:   "요청을 처리할 수 없습니다. 입력 내용을 확인해 주세요.",
	errorCodeValidationFailed: "입력 내용을 다시 확인해 주세요.",
	errorCodeNotFound:         "요청하신 자료를 찾을 수 없습니다.",
	errorCodeInternal:         "일시적인 오류가 발생했습니다. 잠시 후 다시 시도해 주세요.",
	errorCodeRateLimited:      "요청이 너무 많습니다. 잠시 후 다시 시도해 주세요.",
}

type response struct {
	Success bool                   `json:"success"`
	Data    interface{}            `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Message string                 `json:"message,omitempty"`
	Errors  validation.FieldErrors `json:"errors,omitempty"`
}

func (h *Handler) sendData(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, response{Success: true, Data: data})
}

func (h *Handler) sendError(w http.ResponseWriter, r *http.Request, statusCode int, errorCode string) {
	render.Status(r, statusCode)
	render.JSON(w, r, response{Success: false, Error: errorCode})
}

// sendUserError is sendError for the public endpoints: the envelope adds
// the generic Korean message for the code.
func (h *Handler) sendUserError(w http.ResponseWriter, r *http.Request, statusCode int, errorCode string) {
	render.Status(r, statusCode)
	render.JSON(w, r, response{Success: false, Error: errorCode, Message: userMessages[errorCode]})
}

func (h *Handler) sendFieldErrors(w http.ResponseWriter, r *http.Request, fields validation.FieldErrors) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, response{
		Success: false,
		Error:   errorCodeValidationFailed,
		Message: userMessages[errorCodeValidationFailed],
		Errors:  fields,
	})
}
