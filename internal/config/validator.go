// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `Load` calls `validateStruct` immediately after it unmarshals the merged
// Koanf tree.  Any tag mismatch aborts startup, so the binary never runs
// with partial or malformed configuration.
//
// Besides the built-in rules the model uses `a1range`, registered here,
// which checks that sheet ranges look like `Sheet1!A:D`.

package config

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var a1RangeRE = regexp.MustCompile(`^[^!]+![A-Z]+[0-9]*(:[A-Z]+[0-9]*)?$`)

//
// validator instance (package-level singleton)
//

var v = func() *validator.Validate {
	val := validator.New()
	_ = val.RegisterValidation("a1range", func(fl validator.FieldLevel) bool {
		return a1RangeRE.MatchString(fl.Field().String())
	})
	return val
}()

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
