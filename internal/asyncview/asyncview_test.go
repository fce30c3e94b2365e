package asyncview

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle(t *testing.T) {
	m := New[int]()
	assert.Equal(t, None, m.State())

	m = m.Load()
	assert.Equal(t, Loading, m.State())

	m = m.Succeed(42)
	require.Equal(t, Success, m.State())
	v, ok := m.Value()
	require.True(t, ok)
	assert.Equal(t, 42, v)
	assert.NoError(t, m.Err())
}

func TestFailure(t *testing.T) {
	boom := errors.New("boom")
	m := New[string]().Load().Fail(boom)

	assert.Equal(t, Error, m.State())
	assert.Equal(t, boom, m.Err())

	_, ok := m.Value()
	assert.False(t, ok, "payload must not be readable outside SUCCESS")
}

func TestUnloadIsIdempotent(t *testing.T) {
	m := New[int]().Load().Succeed(1)

	m = m.Unload()
	assert.Equal(t, None, m.State())

	m = m.Unload()
	assert.Equal(t, None, m.State())
}

func TestReloadDropsStalePayload(t *testing.T) {
	m := New[int]().Load().Succeed(7).Load()

	assert.Equal(t, Loading, m.State())
	_, ok := m.Value()
	assert.False(t, ok)
	assert.NoError(t, m.Err())
}

func TestZeroValueIsNone(t *testing.T) {
	var m Model[[]string]
	assert.Equal(t, None, m.State())
	_, ok := m.Value()
	assert.False(t, ok)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "NONE", None.String())
	assert.Equal(t, "LOADING", Loading.String())
	assert.Equal(t, "SUCCESS", Success.String())
	assert.Equal(t, "ERROR", Error.String())
}
