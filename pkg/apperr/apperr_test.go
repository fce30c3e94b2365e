package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorMatching(t *testing.T) {
	var err error = &DomainError{Info: ErrorInfo{
		AppCode:  CodeRequestAlreadyExists,
		AppError: "Request already exists",
		Message:  "an open membership request already exists",
	}}

	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 40010, de.AppCode())
	assert.Equal(t, "Request already exists: an open membership request already exists", de.Error())

	wrapped := fmt.Errorf("sending invitation: %w", err)
	assert.True(t, IsAppCode(wrapped, CodeRequestAlreadyExists))
	assert.False(t, IsAppCode(wrapped, CodeNoSuchGroup))
}

func TestIsAppCodeRejectsOtherKinds(t *testing.T) {
	assert.False(t, IsAppCode(&ServerError{Detail: "boom"}, CodeRequestAlreadyExists))
	assert.False(t, IsAppCode(&TransportError{Reason: "unexpected response"}, CodeRequestAlreadyExists))
	assert.False(t, IsAppCode(nil, CodeRequestAlreadyExists))
}

func TestErrorStrings(t *testing.T) {
	assert.Equal(t, "server error: boom", (&ServerError{Detail: "boom"}).Error())

	te := &TransportError{StatusCode: 418, Status: "418 I'm a teapot", Reason: "unexpected response"}
	assert.Equal(t, "unexpected response: 418 418 I'm a teapot", te.Error())

	assert.Equal(t, "malformed response body", (&TransportError{Reason: "malformed response body"}).Error())
}

func TestName(t *testing.T) {
	assert.Equal(t, "No such group", Name(CodeNoSuchGroup))
	assert.Equal(t, "", Name(99999))
}
