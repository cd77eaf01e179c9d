package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yungbote/funny-backend/internal/domain/games"
)

const (
	categoryTag = "categoria"
	notBlankTag = "notblank"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags on gin's validator and
// makes field errors report JSON names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation(categoryTag, categoryValidation)
		_ = v.RegisterValidation(notBlankTag, notBlankValidation)
	})
}

func categoryValidation(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return games.IsCategory(s)
	}
	return false
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return false
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", notBlankTag:
		return fmt.Sprintf("%s is required", field)
	case categoryTag:
		return games.ErrUnknownCategory.Error()
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "gte", "min":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// Nullable tells an absent JSON field apart from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Null = true
		return nil
	}
	return json.Unmarshal(b, &n.Value)
}

// Ptr returns the sent value, or nil when absent or null.
func (n Nullable[T]) Ptr() *T {
	if !n.Set || n.Null {
		return nil
	}
	v := n.Value
	return &v
}

// Cleared reports an explicit null.
func (n Nullable[T]) Cleared() bool { return n.Set && n.Null }
