package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"logitrack/tracker/internal/common"
	"logitrack/tracker/internal/constants"
	"logitrack/tracker/internal/providers"
	"logitrack/tracker/internal/schema"
)

// ImportError is a terminal import failure. Kind is one of the ErrCode*
// constants; Table is empty for failures that are not table-scoped.
type ImportError struct {
	Kind  string
	Table string
	Msg   string
	Err   error
	// Completed lists tables fully written before the failure.
	Completed []string
}

func (e *ImportError) Error() string {
	msg := e.Msg
	if e.Table != "" {
		msg = fmt.Sprintf("%s: %s", e.Table, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to a response status.
func (e *ImportError) HTTPStatus() int {
	switch e.Kind {
	case constants.ErrCodeAuth:
		return http.StatusUnauthorized
	case constants.ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newImportError(kind, table, msg string, err error) *ImportError {
	return &ImportError{Kind: kind, Table: table, Msg: msg, Err: err}
}

// classifyImportError wraps err into an ImportError, keeping an existing one.
func classifyImportError(table string, err error) *ImportError {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie
	}

	var (
		mismatch *schema.SchemaMismatchError
		invalid  *schema.InvalidValueError
		provErr  *providers.ProviderError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return newImportError(constants.ErrCodeCancelled, table, constants.MsgCancelledByUser, err)
	case errors.Is(err, common.ErrLockHeld):
		return newImportError(constants.ErrCodeConflict, "", constants.MsgImportRunning, nil)
	case errors.As(err, &mismatch):
		return &ImportError{Kind: constants.ErrCodeSchemaMismatch, Msg: mismatch.Error()}
	case errors.As(err, &invalid):
		return &ImportError{Kind: constants.ErrCodeInvalidData, Msg: invalid.Error(), Err: invalid.Err}
	case errors.As(err, &provErr):
		return newImportError(constants.ErrCodeFetch, table, "fetch failed", err)
	default:
		return newImportError(constants.ErrCodePersistence, table, "write failed", err)
	}
}
