package rest

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type errorResponse struct {
	Error   string        `json:"error"`
	Details []fieldDetail `json:"details,omitempty"`
}

type fieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var registerTagNames sync.Once

// useJSONFieldNames makes validator report fields by their json tag, which is
// what API clients see.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// writeError is the single place where errors become HTTP responses.
func (s *Server) writeError(c *gin.Context, err error) {
	var (
		status int
		body   errorResponse
		verrs  validator.ValidationErrors
		ferr   *common.ValidationError
	)

	switch {
	case errors.As(err, &verrs):
		status = http.StatusBadRequest
		body.Error = common.ErrValidation.Error()
		for _, fe := range verrs {
			body.Details = append(body.Details, fieldDetail{Field: fe.Field(), Message: fieldMessage(fe)})
		}
	case errors.As(err, &ferr):
		status = http.StatusBadRequest
		body.Error = ferr.Message
		body.Details = []fieldDetail{{Field: ferr.Field, Message: ferr.Message}}
	case errors.Is(err, common.ErrValidation):
		status, body.Error = http.StatusBadRequest, common.ErrValidation.Error()
	case errors.Is(err, common.ErrDuplicateEmail):
		status, body.Error = http.StatusBadRequest, common.ErrDuplicateEmail.Error()
	case errors.Is(err, common.ErrInvalidOrExpiredCode):
		status, body.Error = http.StatusBadRequest, common.ErrInvalidOrExpiredCode.Error()
	case errors.Is(err, common.ErrInvalidCredentials):
		status, body.Error = http.StatusUnauthorized, common.ErrInvalidCredentials.Error()
	case errors.Is(err, common.ErrInvalidToken):
		status, body.Error = http.StatusUnauthorized, common.ErrInvalidToken.Error()
	case errors.Is(err, common.ErrorNotFound):
		// handlers wrap the sentinel with the missing entity, e.g. "user not found"
		status, body.Error = http.StatusNotFound, err.Error()
	case errors.Is(err, common.ErrDispatch):
		status, body.Error = http.StatusInternalServerError, "failed to send OTP"
	default:
		if !errors.Is(err, common.ErrorInternal) {
			s.logger.Error(c.Request.Context(), "unhandled error", "error", err, "path", c.Request.URL.Path)
		}
		status, body.Error = http.StatusInternalServerError, common.ErrorInternal.Error()
	}

	c.AbortWithStatusJSON(status, body)
}

// bindError turns a request decoding failure into an error for writeError.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return fmt.Errorf("%w: %v", common.ErrValidation, err)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}
