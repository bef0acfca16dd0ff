package meshcache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robograph/urdf_browser/meshcache"
)

func TestResolvePackageReference(t *testing.T) {
	packages := map[string]string{"pkgA": "/assets/pkgA"}

	loc, err := meshcache.ResolvePath("package://pkgA/meshes/foo.stl", "/somewhere", packages)
	require.NoError(t, err)
	assert.Equal(t, "/assets/pkgA/meshes/foo.stl", loc)
}

func TestResolveUnknownPackage(t *testing.T) {
	_, err := meshcache.ResolvePath("package://nope/meshes/foo.stl", "/somewhere", nil)
	require.Error(t, err)

	var unresolved *meshcache.UnresolvedPackageError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "nope", unresolved.Package)
}

func TestResolveAbsoluteAndUrl(t *testing.T) {
	for _, raw := range []string{
		"/abs/meshes/foo.stl",
		"http://models.example.com/foo.stl",
		"https://models.example.com/foo.stl",
	} {
		loc, err := meshcache.ResolvePath(raw, "/base", nil)
		require.NoError(t, err)
		assert.Equal(t, raw, loc)
	}
}

func TestResolveParentRelative(t *testing.T) {
	loc, err := meshcache.ResolvePath("../meshes/foo.stl", "/assets/pkgA/urdf/", nil)
	require.NoError(t, err)
	assert.Equal(t, "/assets/pkgA/meshes/foo.stl", loc)

	// same without trailing slash on base
	loc, err = meshcache.ResolvePath("../meshes/foo.stl", "/assets/pkgA/urdf", nil)
	require.NoError(t, err)
	assert.Equal(t, "/assets/pkgA/meshes/foo.stl", loc)
}

func TestResolveRelative(t *testing.T) {
	loc, err := meshcache.ResolvePath("meshes/foo.stl", "/assets/pkgA", nil)
	require.NoError(t, err)
	assert.Equal(t, "/assets/pkgA/meshes/foo.stl", loc)
}

func TestResolveNormalizesSeparators(t *testing.T) {
	loc, err := meshcache.ResolvePath("meshes//foo.stl", "/assets//pkgA/", nil)
	require.NoError(t, err)
	assert.Equal(t, "/assets/pkgA/meshes/foo.stl", loc)

	// scheme separator survives normalization
	loc, err = meshcache.ResolvePath("http://models.example.com//a//b.stl", "/base", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://models.example.com/a/b.stl", loc)
}

// only one parent marker is interpreted, deeper chains stay verbatim
func TestResolveSingleParentLevelOnly(t *testing.T) {
	loc, err := meshcache.ResolvePath("../../meshes/foo.stl", "/a/b/c", nil)
	require.NoError(t, err)
	assert.Equal(t, "/a/b/../meshes/foo.stl", loc)
}
