// Package common defines shared constants and sentinel errors used across
// the ChipsGIFs server and the gifctl operator tool. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")
	ErrorUpstream = errors.New("upstream dependency error")

	// Input errors.
	ErrorMissingGifName = errors.New("missing gif_name")
	ErrorInvalidGifName = errors.New("invalid gif_name")
)
