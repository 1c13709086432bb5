package notify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLocale(t *testing.T, dir, locale, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, locale+".yaml"), []byte(content), 0o644))
}

const enCatalog = `matchFound: "Match for {{personName}} at {{shelterName}}. Call {{shelterPhone}}: {{link}}"
matchFoundNoContact: "Match for {{personName}} at {{shelterName}}: {{link}}"
matchConfirmed: "{{personName}} found at {{shelterName}}: {{link}}"
`

func TestLoadCatalogAndResolve(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en", enCatalog)
	writeLocale(t, dir, "si", `matchFound: "si matchFound {{personName}}"
matchFoundNoContact: "si matchFoundNoContact {{personName}}"
matchConfirmed: "si matchConfirmed {{personName}}"
`)

	c, err := LoadCatalog(dir, "en")
	require.NoError(t, err)

	assert.Contains(t, c.Resolve("si").MatchFound, "si matchFound")
	assert.Contains(t, c.Resolve("en").MatchFound, "Match for")
}

func TestResolveUnknownLocaleFallsBack(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en", enCatalog)

	c, err := LoadCatalog(dir, "en")
	require.NoError(t, err)

	msgs := c.Resolve("xx")
	assert.Equal(t, c.Resolve("en"), msgs)
}

func TestMalformedCatalogFallsBack(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en", enCatalog)
	writeLocale(t, dir, "ta", "matchFound: [this is: not valid yaml")

	c, err := LoadCatalog(dir, "en")
	require.NoError(t, err)

	// The broken catalog is skipped, not fatal; lookups fall back.
	assert.Equal(t, c.Resolve("en"), c.Resolve("ta"))
}

func TestIncompleteCatalogFallsBack(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en", enCatalog)
	writeLocale(t, dir, "si", `matchFound: "only one template"`)

	c, err := LoadCatalog(dir, "en")
	require.NoError(t, err)

	assert.Equal(t, c.Resolve("en"), c.Resolve("si"))
}

func TestLoadCatalogMissingDefaultFails(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "si", `matchFound: "x"
matchFoundNoContact: "y"
matchConfirmed: "z"
`)

	_, err := LoadCatalog(dir, "en")
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	out := Render("Hello {{name}}, visit {{link}}", map[string]string{
		"name": "Kamal",
		"link": "http://example.org/posters/ABCD2345",
	})
	assert.Equal(t, "Hello Kamal, visit http://example.org/posters/ABCD2345", out)
}
