package middlewares

import (
	"encoding/json"
	"fmt"
	"net/http"

	"bitbucket.org/konstbyte/backend/config"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type ResponseWriter struct {
	Writer   http.ResponseWriter
	Language string
	logger   *log.Entry
}

func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		Writer: w,
	}
}

type generalResponse struct {
	Errors  []*errorResponse `json:"errors"`
	Success bool             `json:"success"`
	Data    interface{}      `json:"data"`
}

type errorResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Scope   string      `json:"scope"`
	Type    int         `json:"type"`
	Data    interface{} `json:"data"`
}

type ErrOption func(*errorResponse)

func WithErrorType(errType int) ErrOption {
	return func(err *errorResponse) {
		err.Type = errType
	}
}

func WithErrorScope(scope string) ErrOption {
	return func(err *errorResponse) {
		err.Scope = scope
	}
}

func (r *ResponseWriter) writeJSONResponse(code int, errors []*errorResponse, data interface{}) {
	r.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	response := &generalResponse{Errors: errors, Success: errors == nil, Data: data}
	b, err := json.Marshal(response)
	if err != nil {
		r.Writer.WriteHeader(http.StatusInternalServerError)
		r.Writer.Write([]byte(fmt.Sprintf("unexpected error: %v", err)))
	}
	r.Writer.WriteHeader(code)
	if code, err := r.Writer.Write(b); err != nil {
		_ = fmt.Sprintf("could not response - code: %d", code)
	}
}

func (r *ResponseWriter) writePlainJSONResponse(statusCode int, data interface{}) {
	b, err := json.Marshal(data)
	if err != nil {
		r.Writer.WriteHeader(http.StatusInternalServerError)
		r.Writer.Write([]byte(fmt.Sprintf("unexpected error: %v", err)))
	}

	r.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	r.Writer.WriteHeader(statusCode)

	if code, err := r.Writer.Write(b); err != nil {
		_ = fmt.Sprintf("could not response - code: %d", code)
	}
}

func (r *ResponseWriter) WriteJSON(statusCode int, data interface{}, err error, message string) {
	logger := r.entry()
	fields := make(log.Fields)
	fields["status_code"] = statusCode
	if statusCode >= 200 && statusCode <= 299 {
		logger.WithFields(fields).Info("success")
	}
	if statusCode >= 300 {
		if data == nil {
			data = map[string]interface{}{
				"error": message,
			}
		}
		if err == nil {
			err = errors.Errorf(message)
		}
		fields["errors"] = data
		logger.WithFields(fields).Error(err)
	}
	r.writePlainJSONResponse(statusCode, data)
}

// Write resolves the response message for the request language before
// delegating to WriteJSON.
func (r *ResponseWriter) Write(statusCode int, data interface{}, err error, messages *NewRM) {
	message := ""
	if messages != nil {
		language := r.Language
		if language == "" {
			language = Language.English
		}
		message = (*messages)[language]
	}
	if statusCode >= 300 && data == nil {
		data = map[string]interface{}{
			"error": message,
		}
	}
	r.WriteJSON(statusCode, data, err, message)
}

func (r *ResponseWriter) GetRequestLanguage(req *http.Request) {
	language := req.Header.Get("x-language")
	if _, ok := LanguageMap[language]; !ok {
		language = Language.English
	}
	r.Language = language
}

// StartRequestLogger binds the request identity to this writer's log entry.
// The entry lives on the writer, not in a package global, so concurrent
// requests and their detached goroutines keep their own context.
func (r *ResponseWriter) StartRequestLogger(req *http.Request) {
	r.logger = config.GetLogger().WithFields(log.Fields{
		"request_id": req.Header.Get("X-Request-ID"),
		"host":       req.Host,
		"url":        req.URL.Path,
	})
}

func (r *ResponseWriter) StartLogger(handler string) {
	r.logger = r.entry().WithField("handler", handler)
}

func (r *ResponseWriter) LogError(err error, message string) {
	logger := r.entry()
	if err == nil {
		err = errors.Errorf(message)
	}
	logger.WithFields(log.Fields{
		"message": message,
	}).Error(err)
}

func (r *ResponseWriter) LogInfo(data interface{}, message string) {
	logger := r.entry()
	fields := make(log.Fields)
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Info(message)
}

func (r *ResponseWriter) entry() *log.Entry {
	if r.logger != nil {
		return r.logger
	}
	return config.GetLogger()
}

func (r *ResponseWriter) JSON(code int, data interface{}) {
	r.writeJSONResponse(code, nil, data)
}

func (r *ResponseWriter) Stringf(code int, format string, args ...interface{}) {
	r.Writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	r.Writer.WriteHeader(code)
	if code, err := r.Writer.Write([]byte(fmt.Sprintf(format, args...))); err != nil {
		_ = fmt.Sprintf("could not response - code: %d", code)
	}
}

func (r *ResponseWriter) Errorf(code int, format string, args ...interface{}) {
	errors := []*errorResponse{
		{Code: code, Message: fmt.Sprintf(format, args...)},
	}
	r.writeJSONResponse(code, errors, nil)
}

func (r *ResponseWriter) String(code int, msg string) {
	r.Writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	r.Writer.WriteHeader(code)
	if code, err := r.Writer.Write([]byte(msg)); err != nil {
		_ = fmt.Sprintf("could not response - code: %d", code)
	}
}

func (r *ResponseWriter) Error(code int, msg string, opts ...ErrOption) {
	err := &errorResponse{Code: code, Message: msg}
	for _, With := range opts {
		With(err)
	}
	r.writeJSONResponse(code, []*errorResponse{err}, nil)
}
