package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dimitrije/fleetdesk/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"gopkg.in/go-playground/validator.v9"
)

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return "All fields are required"
		}
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func respondError(c *drift.Context, status int, detail string) {
	_ = c.JSON(status, dto.ErrorResponse{Detail: detail})
}
