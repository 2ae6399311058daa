package downdrag_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/CodeBeast357/downdrag"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := downdrag.Errorf(downdrag.ENOTFOUND, "source %q not found", "test")

	assert.Equal(t, downdrag.ENOTFOUND, downdrag.ErrorCode(err))
	assert.Equal(t, "source \"test\" not found", downdrag.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, downdrag.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, downdrag.ErrorMessage(nil))
}

func TestErrorCode_Wrapped(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("loading: %w", downdrag.Errorf(downdrag.EINVALID, "bad"))

	assert.Equal(t, downdrag.EINVALID, downdrag.ErrorCode(err))
	assert.True(t, downdrag.IsConfigError(err))
}

func TestErrorCode_OtherError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, downdrag.EINTERNAL, downdrag.ErrorCode(err))
	assert.Equal(t, "Internal error.", downdrag.ErrorMessage(err))
	assert.False(t, downdrag.IsConfigError(err))
}
