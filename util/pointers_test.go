package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPtr(t *testing.T) {
	p := Ptr(42)
	require.NotNil(t, p)
	assert.Equal(t, 42, *p)

	s := Ptr(`{"a":1}`)
	assert.Equal(t, `{"a":1}`, *s)
}

func TestDeref(t *testing.T) {
	v := 42
	assert.Equal(t, 42, Deref(&v))

	var p *int
	assert.Equal(t, 0, Deref(p))

	var s *string
	assert.Equal(t, "", Deref(s))
}

func TestDerefOr(t *testing.T) {
	var p *string
	assert.Equal(t, "fallback", DerefOr(p, "fallback"))
	assert.Equal(t, "set", DerefOr(Ptr("set"), "fallback"))
}
