// Package errors implements errors identified by a stable module/code
// pair, so that they can be mapped onto a numeric error surface (and
// reconstructed from one) without resorting to string matching.
package errors

import (
	"errors"
	"fmt"
	"sync"
)

const (
	// UnknownModule is the module name used when the module is unknown.
	UnknownModule = "unknown"

	// CodeNoError is the reserved "no error" code.
	CodeNoError = 0
)

// Re-exports so this package can be used as a replacement for errors.
var (
	As     = errors.As
	Is     = errors.Is
	Unwrap = errors.Unwrap
)

var (
	registered sync.Map // map[key]*codedError

	errUnknown = New(UnknownModule, 1, "unknown error")
)

type key struct {
	module string
	code   uint32
}

type codedError struct {
	key
	msg string
}

func (e *codedError) Error() string {
	return e.msg
}

type withContext struct {
	err     error
	context string
}

func (e *withContext) Error() string {
	return fmt.Sprintf("%v: %s", e.err, e.context)
}

func (e *withContext) Unwrap() error {
	return e.err
}

// New creates and registers a new error with the given module, code and
// message.
//
// The module/code pair must be unique, and the code must not be the
// reserved "no error" code, otherwise this routine will panic.
func New(module string, code uint32, msg string) error {
	if code == CodeNoError {
		panic(fmt.Errorf("errors: code in use by the reserved 'no error' code: %d", CodeNoError))
	}

	e := &codedError{
		key: key{module: module, code: code},
		msg: msg,
	}
	if prev, loaded := registered.LoadOrStore(e.key, e); loaded {
		panic(fmt.Errorf("errors: already registered: %s-%d (existing: %v)", module, code, prev))
	}

	return e
}

// WithContext creates a wrapped error that provides additional context.
func WithContext(err error, context string) error {
	if len(context) == 0 {
		return err
	}

	return &withContext{
		err:     err,
		context: context,
	}
}

// Context returns the additional context associated with the error, if any.
func Context(err error) string {
	var wc *withContext
	if !As(err, &wc) {
		return ""
	}
	return wc.context
}

// Code returns the module and code identifying the given error.
//
// In case the error is not a registered error, the values for the
// unknown error are returned.  In case the error is nil, an empty
// module name and CodeNoError are returned.
func Code(err error) (string, uint32) {
	if err == nil {
		return "", CodeNoError
	}

	var ce *codedError
	if !As(err, &ce) {
		ce = errUnknown.(*codedError)
	}

	return ce.module, ce.code
}

// FromCode reconstructs a previously registered error from its module
// and code, treating any message text beyond the registered message as
// additional context.
//
// In case no error is registered under the module/code pair, a fresh
// error carrying the passed message is returned instead.
func FromCode(module string, code uint32, message string) error {
	v, exists := registered.Load(key{module: module, code: code})
	if !exists || v == errUnknown {
		return &codedError{
			key: key{module: module, code: code},
			msg: message,
		}
	}
	err := v.(*codedError)

	if message == err.msg {
		return err
	}

	prefix := err.msg + ": "
	if len(message) > len(prefix) && message[:len(prefix)] == prefix {
		return WithContext(err, message[len(prefix):])
	}

	return WithContext(err, message)
}
