package term

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/dcmtool/internal/config"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { Configure(config.ColorNever) })

	Configure(config.ColorNever)
	assert.False(t, Enabled())
	assert.Equal(t, "[INFO]", Paint(Blue, "[INFO]"))

	Configure(config.ColorAlways)
	assert.True(t, Enabled())
	painted := Paint(Blue, "[INFO]")
	assert.Contains(t, painted, "[INFO]")
	assert.NotEqual(t, "[INFO]", painted, "styled output carries escape sequences")
}

func TestConfigure_AutoHonorsNoColor(t *testing.T) {
	t.Cleanup(func() { Configure(config.ColorNever) })
	t.Setenv("NO_COLOR", "1")
	Configure(config.ColorAuto)
	assert.False(t, Enabled())
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(nil))

	f, err := os.Create(filepath.Join(t.TempDir(), "plain"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, IsTerminal(f), "regular files are not terminals")
}
