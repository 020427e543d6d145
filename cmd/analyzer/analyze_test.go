package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msacli/internal/config"
	"msacli/internal/files"
)

func TestLatestWorkbook(t *testing.T) {
	paths := config.PathsAt(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())
	cli := &cliContext{paths: paths, discovery: files.NewDiscovery(paths)}

	_, err := latestWorkbook(cli, "")
	assert.ErrorContains(t, err, "no workbooks found")

	_, err = latestWorkbook(cli, "Missing 2026")
	assert.ErrorContains(t, err, "no workbooks found")

	older := filepath.Join(paths.InputDir, "old.xlsx")
	require.NoError(t, os.WriteFile(older, []byte("x"), 0644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	newest := filepath.Join(paths.InputDir, "new.xlsx")
	require.NoError(t, os.WriteFile(newest, []byte("x"), 0644))

	path, err := latestWorkbook(cli, "")
	require.NoError(t, err)
	assert.Equal(t, newest, path)
}
