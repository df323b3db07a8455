package display

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"small bytes", 512, "512 B"},
		{"exactly 1 KiB", 1024, "1.0 KiB"},
		{"1.5 KiB", 1536, "1.5 KiB"},
		{"1 MiB", 1024 * 1024, "1.0 MiB"},
		{"typical slice 514 KiB", 526336, "514 KiB"},
		{"negative", -2048, "-2.0 KiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.bytes))
		})
	}
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "7", FormatCount(7))
	assert.Equal(t, "12,345", FormatCount(12345))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 file", Plural(1, "file"))
	assert.Equal(t, "0 files", Plural(0, "file"))
	assert.Equal(t, "1,200 files", Plural(1200, "file"))
}

func TestHeaderAndBanner(t *testing.T) {
	assert.Equal(t, "> Running dcmtool v0.3.0 sort on: /data/in", Header("0.3.0", "sort", "/data/in"))

	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), `\__,_|\___|`)
}
