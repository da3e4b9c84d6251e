package middleware

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/joshu-sajeev/queuectl/common"
)

var validate = validator.New()

func Bind[T any](c *gin.Context, dest *T) bool {
	return bind(c, dest, false)
}

// BindOptional is Bind for endpoints whose body may be omitted. An empty
// body, chunked or not, leaves dest at its zero value.
func BindOptional[T any](c *gin.Context, dest *T) bool {
	return bind(c, dest, true)
}

func bind[T any](c *gin.Context, dest *T, optional bool) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		c.Error(common.Errf(http.StatusBadRequest, "invalid json: %v", err.Error()))
		return false
	}

	if err := validate.Struct(dest); err != nil {
		c.Error(common.APIError{
			Status:  http.StatusBadRequest,
			Message: "validation failed",
			Fields:  FormatValidationErrors(err),
		})
		return false
	}

	return true
}

func FormatValidationErrors(err error) map[string]any {
	fields := map[string]any{}
	for _, e := range err.(validator.ValidationErrors) {
		fields[e.Field()] = "failed " + e.Tag()
	}
	return fields
}
