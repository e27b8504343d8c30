// Package validation registers go-playground/validator custom tags for
// the document command surface: A1 cell/range tokens and pagination
// cursors, built around a singleton validator instance.
package validation

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eruostudio/sheetcore/pkg/a1"
	"github.com/eruostudio/sheetcore/pkg/pagination"
)

var v *validator.Validate

// Validator returns a singleton validator with custom rules registered.
func Validator() *validator.Validate {
	if v == nil {
		v = validator.New()
		// Custom: path must have a supported Excel extension.
		_ = v.RegisterValidation("xlsxpath", func(fl validator.FieldLevel) bool {
			s := strings.ToLower(strings.TrimSpace(fl.Field().String()))
			if s == "" {
				return false
			}
			return strings.HasSuffix(s, ".xlsx") || strings.HasSuffix(s, ".xlsm") || strings.HasSuffix(s, ".xltx") || strings.HasSuffix(s, ".xltm")
		})
		// Custom: a single A1 cell token, e.g. "B12".
		_ = v.RegisterValidation("a1cell", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return false
			}
			_, ok := a1.ParseCell(s)
			return ok
		})
		// Custom: an A1 range token, e.g. "A1:D50".
		_ = v.RegisterValidation("a1range", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return false
			}
			_, ok := a1.ParseRange(s)
			return ok
		})
		// Custom: cursor must be decodable via pagination.DecodeCursor.
		_ = v.RegisterValidation("cursor", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return true // empty is allowed; use omitempty with this tag
			}
			if _, err := base64.RawURLEncoding.DecodeString(s); err != nil {
				return false
			}
			_, err := pagination.DecodeCursor(s)
			return err == nil
		})
	}
	return v
}

// ValidateStruct validates a struct and returns a user-friendly error
// string suitable for MCP tool errors. Returns empty string when valid.
func ValidateStruct(s any) string {
	if err := Validator().Struct(s); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			fe := ve[0]
			field := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				return fmt.Sprintf("VALIDATION: %s is required", field)
			case "xlsxpath":
				return "VALIDATION: path must be an Excel file (.xlsx, .xlsm, .xltx, .xltm)"
			case "a1cell":
				return "VALIDATION: invalid cell reference; use a token like B12"
			case "a1range":
				return "VALIDATION: invalid range; use a token like A1:D50"
			case "cursor":
				return "CURSOR_INVALID: failed to decode cursor; restart pagination"
			case "min", "max", "gte", "lte":
				return fmt.Sprintf("VALIDATION: %s must satisfy %s=%s", field, fe.Tag(), fe.Param())
			}
			return fmt.Sprintf("VALIDATION: invalid %s", field)
		}
		return "VALIDATION: invalid inputs"
	}
	return ""
}
