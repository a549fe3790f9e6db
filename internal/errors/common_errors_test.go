package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "file not found", errType: ErrTypeFileNotFound, expected: "FILE_NOT_FOUND"},
		{name: "schema mismatch", errType: ErrTypeSchemaMismatch, expected: "SCHEMA_MISMATCH"},
		{name: "type mismatch", errType: ErrTypeTypeMismatch, expected: "TYPE_MISMATCH"},
		{name: "parsing", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "storage", errType: ErrTypeStorage, expected: "STORAGE"},
		{name: "validation", errType: ErrTypeValidation, expected: "VALIDATION"},
		{name: "config", errType: ErrTypeConfig, expected: "CONFIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeSchemaMismatch,
				Message: "row has 7 fields, schema has 8",
			},
			wantMessage: "[SCHEMA_MISMATCH] row has 7 fields, schema has 8",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeStorage,
				Message: "failed to read data/a.tsv",
				Cause:   fmt.Errorf("disk on fire"),
			},
			wantMessage: "[STORAGE] failed to read data/a.tsv: disk on fire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := NewFileNotFoundError("data/missing.tsv", fs.ErrNotExist)

	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Equal(t, "data/missing.tsv", err.Context["path"])
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeTypeMismatch, Message: "not text"}
	err.WithContext("column", "user_rating").WithContext("kind", "float")

	require.NotNil(t, err.Context)
	assert.Equal(t, "user_rating", err.Context["column"])
	assert.Equal(t, "float", err.Context["kind"])
}

func TestHelperConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
	}{
		{name: "schema mismatch", err: NewSchemaMismatchError("x"), wantType: ErrTypeSchemaMismatch},
		{name: "type mismatch", err: NewTypeMismatchError("x"), wantType: ErrTypeTypeMismatch},
		{name: "parsing", err: NewParsingError("x", nil), wantType: ErrTypeParsing},
		{name: "storage", err: NewStorageError("x", nil), wantType: ErrTypeStorage},
		{name: "validation", err: NewAppValidationError("x"), wantType: ErrTypeValidation},
		{name: "config", err: NewConfigError("x", nil), wantType: ErrTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestIsTypeAndTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("load step: %w", NewSchemaMismatchError("bad width"))

	assert.True(t, IsType(wrapped, ErrTypeSchemaMismatch))
	assert.False(t, IsType(wrapped, ErrTypeTypeMismatch))
	assert.Equal(t, ErrTypeSchemaMismatch, TypeOf(wrapped))

	assert.False(t, IsType(fmt.Errorf("plain"), ErrTypeStorage))
	assert.Equal(t, ErrorType(""), TypeOf(fmt.Errorf("plain")))
}
