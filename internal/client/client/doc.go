// Package client talks to a running ChipsGIFs server over its public HTTP
// API.
//
// Non-2xx answers are mapped onto sentinel errors that callers can match
// with errors.Is: ErrUnavailable for transport failures and 5xx,
// ErrNotFound for 404 and ErrBadRequest for 400.
package client
