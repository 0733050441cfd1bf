package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHashSecret(t *testing.T) {
	out, err := execute(t, "hash-secret", "let-me-in")
	require.NoError(t, err)
	hash := bytes.TrimSpace([]byte(out))
	assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte("let-me-in")))
}

func TestInvalidKindRejected(t *testing.T) {
	t.Setenv("CACHE_PATH", t.TempDir()+"/cache.db")
	_, err := execute(t, "list", "--kind", "venue")
	assert.ErrorContains(t, err, `invalid kind "venue"`)
}

func TestImportRequiresReadableFile(t *testing.T) {
	t.Setenv("CACHE_PATH", t.TempDir()+"/cache.db")
	_, err := execute(t, "import", "does-not-exist.csv")
	assert.ErrorContains(t, err, "failed to read")
}

func TestListEmptySet(t *testing.T) {
	t.Setenv("CACHE_PATH", t.TempDir()+"/cache.db")
	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Empty(t, out)
}
