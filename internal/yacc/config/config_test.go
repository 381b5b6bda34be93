package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_MissingFileReturnsDefault(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), f)
}

func Test_Load_ParsesTOMLOverridingOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "yacc.toml")
	contents := `
file_prefix = "parser"
verbose = true
expect_sr = 3
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	f, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "parser", f.FileNamePrefix)
	assert.True(t, f.Verbose)
	assert.Equal(t, 3, f.ExpectSR)
	// Fields the file omitted keep Default()'s values.
	assert.Equal(t, ".", f.OutputDir)
	assert.Equal(t, "c", f.Language)
	assert.True(t, f.LineDirectives)
}

func Test_Apply_OnlyOverridesNonNilFields(t *testing.T) {
	base := Default()
	prefix := "gen"
	strict := true

	merged := base.Apply(Overrides{
		FileNamePrefix: &prefix,
		Strict:         &strict,
	})

	assert.Equal(t, "gen", merged.FileNamePrefix)
	assert.True(t, merged.Strict)
	// Everything else should be untouched from base.
	assert.Equal(t, base.OutputDir, merged.OutputDir)
	assert.Equal(t, base.ExpectSR, merged.ExpectSR)
	assert.Equal(t, base.Verbose, merged.Verbose)
}

func Test_Apply_NoOverridesLeavesFileUnchanged(t *testing.T) {
	base := Default()
	merged := base.Apply(Overrides{})
	assert.Equal(t, base, merged)
}
