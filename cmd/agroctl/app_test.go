package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("STORE_SQLITE_PATH", filepath.Join(dir, "agro.db"))
	t.Setenv("BACKUP_PROVIDER", "none")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"agroctl"}, args...))
	return out.String(), err
}

func TestCLI_MigrarExportarImportar(t *testing.T) {
	dir := setupEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, `"to": 3`)

	file := filepath.Join(dir, "backup.json")
	_, err = run(t, "export", "--out", file)
	require.NoError(t, err)
	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "ACIDE PHOSPHORIQUE")

	_, err = run(t, "clear")
	assert.Error(t, err, "sin --yes no se borra")
	_, err = run(t, "clear", "--yes")
	require.NoError(t, err)

	out, err = run(t, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, `"format": "backup"`)
}

func TestCLI_SaldoYRespaldoSinConfigurar(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "balance", "--location", "WAREHOUSE")
	require.NoError(t, err)
	assert.Contains(t, out, "PRODUCTO")

	_, err = run(t, "balance", "--location", "NINGUNA")
	assert.Error(t, err)

	_, err = run(t, "backup", "now")
	assert.Error(t, err)
}
