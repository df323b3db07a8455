package classify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/dcmtool/internal/dcmtag"
	"github.com/backmassage/dcmtool/internal/dicomstore"
	"github.com/backmassage/dcmtool/internal/fault"
)

func TestRegistry_FirstSeenOrder(t *testing.T) {
	seq := []string{"a", "b", "a", "c", "b", "d", "a"}
	r := NewRegistry()

	// The index of a value equals the number of distinct values seen
	// strictly before its first occurrence.
	seen := map[string]int{}
	for _, v := range seq {
		want, ok := seen[v]
		if !ok {
			want = len(seen)
			seen[v] = want
		}
		assert.Equal(t, want, r.Index(v), "Index(%q)", v)
	}
	assert.Equal(t, 4, r.Len())
	assert.Equal(t, []string{"a", "b", "c", "d"}, r.Keys())

	i, ok := r.Lookup("c")
	assert.True(t, ok)
	assert.Equal(t, 2, i)
	_, ok = r.Lookup("zzz")
	assert.False(t, ok)
	assert.Equal(t, 4, r.Len(), "Lookup does not assign")
}

func TestRegistry_ManyValues(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 100; i++ {
		require.Equal(t, i, r.Index(fmt.Sprintf("v%d", i)))
	}
	for i := 99; i >= 0; i-- {
		require.Equal(t, i, r.Index(fmt.Sprintf("v%d", i)))
	}
}

func orientation(vals ...string) *dicomstore.Metadata {
	return dicomstore.NewMetadata(dicomstore.Entry{
		Tag:   dcmtag.ImageOrientationPatient,
		Value: dicomstore.StringsValue("DS", vals...),
	})
}

func series(uid string) *dicomstore.Metadata {
	return dicomstore.NewMetadata(dicomstore.Entry{
		Tag:   dcmtag.SeriesInstanceUID,
		Value: dicomstore.StringsValue("UI", uid),
	})
}

func TestClassify_SeriesUID(t *testing.T) {
	c := New(ModeSeriesUID, nil)
	key, err := c.Classify(series("1.2.3"))
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", key)
}

func TestClassify_Orientation(t *testing.T) {
	c := New(ModeOrientation, NewRegistry())

	files := []*dicomstore.Metadata{
		orientation("1", "0", "0", "0", "1", "0"),
		orientation("0", "1", "0", "-1", "0", "0"),
		orientation("1", "0", "0", "0", "1", "0"),
	}
	var got []string
	for _, md := range files {
		key, err := c.Classify(md)
		require.NoError(t, err)
		got = append(got, key)
	}
	assert.Equal(t, []string{"orientation0", "orientation1", "orientation0"}, got)
}

func TestClassify_OrientationExactStringEquality(t *testing.T) {
	c := New(ModeOrientation, nil)
	a, err := c.Classify(orientation("1", "0", "0", "0", "1", "0"))
	require.NoError(t, err)
	b, err := c.Classify(orientation("1.0", "0", "0", "0", "1", "0"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "formatting differences are different groups")
}

func TestClassify_SharedRegistryAcrossClassifiers(t *testing.T) {
	reg := NewRegistry()
	reg.Index(`0\1\0\-1\0\0`)
	key, err := New(ModeOrientation, reg).Classify(orientation("1", "0", "0", "0", "1", "0"))
	require.NoError(t, err)
	assert.Equal(t, "orientation1", key)
}

func TestClassify_Failures(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		md   *dicomstore.Metadata
	}{
		{"series uid absent", ModeSeriesUID, orientation("1", "0", "0", "0", "1", "0")},
		{"orientation absent", ModeOrientation, series("1.2.3")},
		{"series uid empty", ModeSeriesUID, series("")},
		{"series uid with separator", ModeSeriesUID, series("1.2/3")},
		{"series uid dot-dot", ModeSeriesUID, series("..")},
		{"unknown mode", Mode("modality"), series("1.2.3")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := New(tt.mode, nil).Classify(tt.md)
			require.Error(t, err)
			assert.Empty(t, key)
			k, ok := fault.KindOf(err)
			require.True(t, ok)
			assert.Equal(t, fault.KindClassification, k)
		})
	}
}

func TestClassify_FailureDoesNotConsumeIndex(t *testing.T) {
	reg := NewRegistry()
	c := New(ModeOrientation, reg)
	_, err := c.Classify(series("1.2.3"))
	require.Error(t, err)
	assert.Equal(t, 0, reg.Len())
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"seriesUID", ModeSeriesUID, false},
		{"seriesuid", ModeSeriesUID, false},
		{"", ModeSeriesUID, false},
		{"Orientation", ModeOrientation, false},
		{"modality", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
