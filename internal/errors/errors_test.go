package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := DataMissing("dataset file not found")
	wrapped := Wrap(base, "failed to load dataset")

	assert.Equal(t, CodeDataMissing, GetCode(wrapped))
	assert.True(t, stderrors.Is(wrapped, base))
	assert.Equal(t, "failed to load dataset: dataset file not found", wrapped.Error())
}

func TestWrapPlainErrorIsInternal(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("boom"), "render failed")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", SchemaInvalid("missing columns"))
	assert.True(t, HasCode(err, CodeSchemaInvalid))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}

func TestWithCode(t *testing.T) {
	cause := fmt.Errorf("bad hours")
	err := WithCode(CodeInvalidInput, cause)
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.True(t, stderrors.Is(err, cause))
}
