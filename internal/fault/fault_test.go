package fault

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"op path cause", New(KindParse, "parse", "/data/a.dcm", errors.New("bad preamble")), "parse /data/a.dcm: bad preamble"},
		{"op only", New(KindEncode, "encode", "", nil), "encode"},
		{"formatted", Errorf(KindClassification, "classify", "attribute %s absent", "(0020,000E)"), "classify: attribute (0020,000E) absent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindOf_ThroughWrapping(t *testing.T) {
	base := New(KindPlacement, "mkdir", "/x", fs.ErrPermission)
	wrapped := fmt.Errorf("sort item: %w", base)

	k, ok := KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindPlacement, k)
	assert.ErrorIs(t, wrapped, fs.ErrPermission)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(New(KindPrecondition, "input", "/nope", nil)))
	assert.False(t, IsFatal(New(KindParse, "parse", "", nil)))
	assert.False(t, IsFatal(errors.New("unclassified")))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "classification", KindClassification.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}
