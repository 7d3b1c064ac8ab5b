package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"hotel-reservations/models"
)

var (
	registerOnce sync.Once
	registerErr  error

	personNameRe = regexp.MustCompile(`^[\p{L}\s'.-]+$`)
)

// RegisterValidators adds the custom binding tags used by request payloads:
//
//	isodate    - YYYY-MM-DD or RFC3339 string
//	roomtype   - individual, double or suite (any case)
//	password   - 8+ chars with upper, lower and digit
//	personname - letters, spaces and a few separators
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		for tag, fn := range map[string]validator.Func{
			"isodate":    isoDate,
			"roomtype":   roomType,
			"password":   strongPassword,
			"personname": personName,
		} {
			if err := v.RegisterValidation(tag, fn); err != nil {
				registerErr = fmt.Errorf("register %s: %w", tag, err)
				return
			}
		}
	})
	return registerErr
}

func isoDate(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

func roomType(fl validator.FieldLevel) bool {
	_, ok := models.NormalizeRoomType(fl.Field().String())
	return ok
}

func strongPassword(fl validator.FieldLevel) bool {
	var upper, lower, digit bool
	pw := fl.Field().String()
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return len(pw) >= 8 && upper && lower && digit
}

func personName(fl validator.FieldLevel) bool {
	return personNameRe.MatchString(strings.TrimSpace(fl.Field().String()))
}

// ValidationDetails flattens validator errors into field -> rule.
func ValidationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out[fe.Field()] = rule
	}
	return out
}
