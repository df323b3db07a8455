package check

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/dcmtool/internal/config"
	"github.com/backmassage/dcmtool/internal/fault"
)

type mockLogger struct{ lines []string }

func (m *mockLogger) Debug(format string, args ...interface{}) { m.lines = append(m.lines, format) }

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestInput(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.dcm")
	touch(t, file)
	missing := filepath.Join(dir, "nope")

	tests := []struct {
		name    string
		path    string
		kind    InputKind
		wantDir bool
		wantErr error
	}{
		{"file for file-or-dir", file, FileOrDir, false, nil},
		{"dir for file-or-dir", dir, FileOrDir, true, nil},
		{"file for file-only", file, FileOnly, false, nil},
		{"dir for file-only", dir, FileOnly, true, ErrInputIsDir},
		{"dir for dir-only", dir, DirOnly, true, nil},
		{"file for dir-only", file, DirOnly, false, ErrInputNotDir},
		{"missing", missing, FileOrDir, false, ErrInputNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isDir, err := Input(tt.path, tt.kind)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, fault.IsFatal(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDir, isDir)
		})
	}
}

func TestRules(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "rules.json")
	touch(t, file)

	assert.NoError(t, Rules(file))
	assert.ErrorIs(t, Rules(filepath.Join(dir, "missing.json")), ErrRulesNotFound)
	assert.ErrorIs(t, Rules(dir), ErrRulesIsDir)
}

func TestKindFor(t *testing.T) {
	assert.Equal(t, FileOnly, KindFor(config.CmdDump))
	assert.Equal(t, FileOnly, KindFor(config.CmdRewrite))
	assert.Equal(t, DirOnly, KindFor(config.CmdLoad))
	assert.Equal(t, FileOrDir, KindFor(config.CmdSort))
	assert.Equal(t, FileOrDir, KindFor(config.CmdAnonymize))
}

func TestPreconditions(t *testing.T) {
	in := t.TempDir()
	rulesFile := filepath.Join(t.TempDir(), "rules.json")
	touch(t, rulesFile)

	t.Run("anonymize ok with missing output", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Command = config.CmdAnonymize
		cfg.InputPath = in
		cfg.RulesPath = rulesFile
		cfg.OutputPath = filepath.Join(t.TempDir(), "anon", "out")
		log := &mockLogger{}
		isDir, err := Preconditions(&cfg, log)
		require.NoError(t, err)
		assert.True(t, isDir)
		assert.NotEmpty(t, log.lines)
	})

	t.Run("anonymize output inside input", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Command = config.CmdAnonymize
		cfg.InputPath = in
		cfg.RulesPath = rulesFile
		cfg.OutputPath = filepath.Join(in, "anon")
		_, err := Preconditions(&cfg, &mockLogger{})
		assert.ErrorIs(t, err, ErrOutputInsideInput)
	})

	t.Run("missing rules", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Command = config.CmdAnonymize
		cfg.InputPath = in
		cfg.RulesPath = filepath.Join(in, "missing.json")
		cfg.OutputPath = t.TempDir()
		_, err := Preconditions(&cfg, &mockLogger{})
		assert.ErrorIs(t, err, ErrRulesNotFound)
	})

	t.Run("load on a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "a.dcm")
		touch(t, file)
		cfg := config.DefaultConfig()
		cfg.Command = config.CmdLoad
		cfg.InputPath = file
		_, err := Preconditions(&cfg, &mockLogger{})
		assert.ErrorIs(t, err, ErrInputNotDir)
	})
}
