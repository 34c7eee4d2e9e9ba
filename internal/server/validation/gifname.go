// Package validation guards GIF identifiers before they reach a store,
// the object store or the filesystem.
package validation

import (
	"errors"
	"regexp"
	"strings"

	"github.com/chippom/ChipsGIFs/internal/common"
	"github.com/go-playground/validator/v10"
)

// MaxGifNameLength bounds identifiers to what object keys and file names
// comfortably hold.
const MaxGifNameLength = 255

var gifNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-. ]+$`)

// ValidGifName reports whether s is a safe GIF identifier: allow-listed
// characters only, no "..", not just dots and spaces.
func ValidGifName(s string) bool {
	if s == "" || len(s) > MaxGifNameLength {
		return false
	}
	if !gifNamePattern.MatchString(s) {
		return false
	}
	if strings.Contains(s, "..") {
		return false
	}
	return strings.Trim(s, ". ") != ""
}

func gifNameTag(fl validator.FieldLevel) bool {
	return ValidGifName(fl.Field().String())
}

// New returns a validator that knows the "gifname" tag.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("gifname", gifNameTag)
	return v
}

var std = New()

// Struct validates s with the shared validator.
func Struct(s any) error {
	return std.Struct(s)
}

// GifName checks a raw identifier and returns common.ErrorMissingGifName or
// common.ErrorInvalidGifName.
func GifName(s string) error {
	if s == "" {
		return common.ErrorMissingGifName
	}
	if !ValidGifName(s) {
		return common.ErrorInvalidGifName
	}
	return nil
}

// GifNameError maps a validator error on a gif_name field onto the
// package's sentinels. Other errors are returned unchanged.
func GifNameError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	for _, fe := range ve {
		switch fe.Tag() {
		case "required":
			return common.ErrorMissingGifName
		case "gifname":
			return common.ErrorInvalidGifName
		}
	}
	return err
}
