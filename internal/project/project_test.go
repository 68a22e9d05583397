package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubctl/internal/publish"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.yaml", "name: My App\nslug: my-app\nowner: acme\n")

	p, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "my-app", p.Slug())
	assert.Equal(t, "acme", p.Owner())
	assert.Equal(t, filepath.Join(dir, "app.yaml"), p.Path)
}

func TestLoad_JSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.json", `{"name": "My App", "slug": "my-app"}`)

	p, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "my-app", p.Slug())
	assert.Equal(t, "", p.Owner())
}

func TestLoad_PrefersYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.json", `{"slug": "from-json"}`)
	writeFile(t, dir, "app.yml", "slug: from-yml\n")

	p, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-yml", p.Slug())
}

func TestLoad_OwnerEnvExpansion(t *testing.T) {
	t.Setenv("PUBCTL_TEST_OWNER", "team")
	dir := t.TempDir()
	writeFile(t, dir, "app.yaml", "slug: app\nowner: ${PUBCTL_TEST_OWNER}\n")

	p, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "team", p.Owner())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrNoProjectFile)

	dir := t.TempDir()
	writeFile(t, dir, "app.yaml", "name: no slug\n")
	_, err = Load(dir)
	assert.ErrorIs(t, err, publish.ErrInvalidArgument)

	dir = t.TempDir()
	writeFile(t, dir, "app.yaml", "slug: [unclosed\n")
	_, err = Load(dir)
	assert.Error(t, err)
}
