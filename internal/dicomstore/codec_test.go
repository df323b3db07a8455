package dicomstore

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/dcmtool/internal/dcmtag"
	"github.com/backmassage/dcmtool/internal/dicomstore/dicomtest"
	"github.com/backmassage/dcmtool/internal/fault"
	"github.com/backmassage/dcmtool/internal/rules"
)

func sampleFile(t *testing.T) []byte {
	return dicomtest.Encode(t, dicomtest.Spec{
		PatientName: "Doe^John",
		PatientID:   "PID-0042",
		SeriesUID:   "1.2.3",
		Orientation: []string{"1", "0", "0", "0", "1", "0"},
		Rows:        4,
		Columns:     4,
	})
}

func TestCodec_Parse(t *testing.T) {
	md, err := NewCodec().Parse(sampleFile(t))
	require.NoError(t, err)

	series, ok := md.Lookup(dcmtag.SeriesInstanceUID)
	require.True(t, ok)
	assert.Equal(t, KindStrings, series.Kind)
	assert.Equal(t, "1.2.3", series.Canonical())

	orient, ok := md.Lookup(dcmtag.ImageOrientationPatient)
	require.True(t, ok)
	assert.Equal(t, `1\0\0\0\1\0`, orient.Canonical())

	rows, ok := md.Lookup(dcmtag.Rows)
	require.True(t, ok)
	assert.Equal(t, KindInts, rows.Kind)
	assert.Equal(t, []int{4}, rows.Ints)

	_, ok = md.Lookup(dcmtag.TransferSyntaxUID)
	assert.True(t, ok, "file-meta attributes are part of the metadata")
}

func TestCodec_ParseRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", bytes.Repeat([]byte("not dicom "), 40)},
		{"truncated", sampleFile(t)[:150]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := NewCodec().Parse(tt.data)
			require.Error(t, err)
			assert.Nil(t, md, "no partial metadata on failure")
			k, ok := fault.KindOf(err)
			require.True(t, ok)
			assert.Equal(t, fault.KindParse, k)
		})
	}
}

func TestCodec_EncodeRemovesRuledAttribute(t *testing.T) {
	codec := NewCodec()
	md, err := codec.Parse(sampleFile(t))
	require.NoError(t, err)

	rs := rules.New(map[dcmtag.Tag]rules.Rule{
		dcmtag.PatientName: {Action: rules.ActionRemove},
	}, nil)
	out, err := codec.Encode(md, rs)
	require.NoError(t, err)

	anon, err := codec.Parse(out)
	require.NoError(t, err)
	_, ok := anon.Lookup(dcmtag.PatientName)
	assert.False(t, ok, "removed attribute must be gone")

	for _, tg := range []dcmtag.Tag{dcmtag.PatientID, dcmtag.SeriesInstanceUID, dcmtag.ImageOrientationPatient, dcmtag.Rows} {
		before, _ := md.Lookup(tg)
		after, ok := anon.Lookup(tg)
		require.True(t, ok, "attribute %s preserved", tg)
		assert.Equal(t, before.Canonical(), after.Canonical(), "attribute %s unchanged", tg)
	}

	// Source metadata untouched.
	_, ok = md.Lookup(dcmtag.PatientName)
	assert.True(t, ok)
}

func TestCodec_EncodeActions(t *testing.T) {
	codec := NewCodec()
	md, err := codec.Parse(sampleFile(t))
	require.NoError(t, err)

	def := rules.Rule{Action: rules.ActionKeep}
	rs := rules.New(map[dcmtag.Tag]rules.Rule{
		dcmtag.PatientName:       {Action: rules.ActionReplace, Value: []string{"Anonymized"}},
		dcmtag.PatientID:         {Action: rules.ActionClear},
		dcmtag.SeriesInstanceUID: {Action: rules.ActionGenerate, Value: []string{"salt"}},
		dcmtag.Rows:              {Action: rules.ActionReplace, Value: []string{"8"}},
	}, &def)

	out, err := codec.Encode(md, rs)
	require.NoError(t, err)
	anon, err := codec.Parse(out)
	require.NoError(t, err)

	name, _ := anon.Lookup(dcmtag.PatientName)
	assert.Equal(t, "Anonymized", name.Canonical())

	id, ok := anon.Lookup(dcmtag.PatientID)
	require.True(t, ok, "cleared attribute is kept")
	assert.True(t, id.Empty())

	series, _ := anon.Lookup(dcmtag.SeriesInstanceUID)
	assert.Equal(t, Generate("UI", "1.2.3", "salt"), series.Canonical())

	rows, _ := anon.Lookup(dcmtag.Rows)
	assert.Equal(t, []int{8}, rows.Ints)
}

func TestCodec_EncodeIsDeterministic(t *testing.T) {
	codec := NewCodec()
	md, err := codec.Parse(sampleFile(t))
	require.NoError(t, err)
	rs := rules.New(map[dcmtag.Tag]rules.Rule{
		dcmtag.SeriesInstanceUID: {Action: rules.ActionGenerate},
	}, nil)

	a, err := codec.Encode(md, rs)
	require.NoError(t, err)
	b, err := codec.Encode(md, rs)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCodec_EncodeFailures(t *testing.T) {
	codec := NewCodec()
	md, err := codec.Parse(sampleFile(t))
	require.NoError(t, err)

	tests := []struct {
		name string
		md   *Metadata
		rs   *rules.RuleSet
	}{
		{"non-numeric replacement for US", md, rules.New(map[dcmtag.Tag]rules.Rule{
			dcmtag.Rows: {Action: rules.ActionReplace, Value: []string{"wide"}},
		}, nil)},
		{"generate on numeric attribute", md, rules.New(map[dcmtag.Tag]rules.Rule{
			dcmtag.Columns: {Action: rules.ActionGenerate},
		}, nil)},
		{"hand-built metadata", NewMetadata(Entry{dcmtag.PatientName, StringsValue("PN", "x")}), rules.New(nil, nil)},
		{"nil metadata", nil, rules.New(nil, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := codec.Encode(tt.md, tt.rs)
			require.Error(t, err)
			assert.Nil(t, out)
			k, _ := fault.KindOf(err)
			assert.Equal(t, fault.KindEncode, k)
		})
	}
}

func TestGenerate(t *testing.T) {
	uid := Generate("UI", "1.2.3", "")
	assert.True(t, strings.HasPrefix(uid, "2.25."))
	assert.LessOrEqual(t, len(uid), 64, "UI values are at most 64 chars")
	assert.Equal(t, uid, Generate("UI", "1.2.3", ""), "stable")
	assert.NotEqual(t, uid, Generate("UI", "1.2.3", "other-salt"))
	assert.NotEqual(t, uid, Generate("UI", "1.2.4", ""))

	token := Generate("LO", "Doe^John", "")
	assert.Len(t, token, 16)
	assert.Equal(t, "", Generate("LO", "", "salt"))
}

func TestDump(t *testing.T) {
	md := NewMetadata(
		Entry{dcmtag.PatientName, StringsValue("PN", "Doe^John")},
		Entry{dcmtag.ImageOrientationPatient, StringsValue("DS", "1", "0", "0", "0", "1", "0")},
		Entry{dcmtag.Rows, IntsValue("US", 512)},
		Entry{dcmtag.New(0x0009, 0x1001), Value{VR: "OB", Kind: KindBytes, Size: 12}},
	)
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, md))

	want := "(0010,0010) PN PatientName = Doe^John\n" +
		"(0020,0037) DS ImageOrientationPatient = 1\\0\\0\\0\\1\\0\n" +
		"(0028,0010) US Rows = 512\n" +
		"(0009,1001) OB ? = <12 bytes>\n"
	assert.Equal(t, want, buf.String())
}

func TestMetadata_OrderAndValues(t *testing.T) {
	md := NewMetadata(
		Entry{dcmtag.Rows, IntsValue("US", 1)},
		Entry{dcmtag.PatientName, StringsValue("PN", "a")},
		Entry{dcmtag.Rows, IntsValue("US", 2)},
	)
	assert.Equal(t, 2, md.Len())
	assert.Equal(t, []dcmtag.Tag{dcmtag.Rows, dcmtag.PatientName}, md.Tags())
	v, _ := md.Lookup(dcmtag.Rows)
	assert.Equal(t, []int{2}, v.Ints)
}

func TestValue_CanonicalAndEmpty(t *testing.T) {
	assert.Equal(t, "0.5\\1", Value{Kind: KindFloats, Floats: []float64{0.5, 1}}.Canonical())
	assert.True(t, StringsValue("UI", "").Empty())
	assert.True(t, StringsValue("UI").Empty())
	assert.False(t, StringsValue("UI", "1.2").Empty())
	assert.True(t, Value{Kind: KindSequence}.Empty())
}
