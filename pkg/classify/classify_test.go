package classify

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func newTestClassifier(resolver Resolver) *Classifier {
	return NewWithEnv(resolver, noEnv)
}

func tmpDirResolved(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestClassify_Static(t *testing.T) {
	req := require.New(t)
	c := newTestClassifier(NewPathResolver())
	settings := Settings{ApplicationDirectories: []string{tmpDirResolved(t)}}

	tests := []struct {
		module   string
		expected Classification
	}{
		{"__future__", Future},
		{"os", Builtin},
		{"random", Builtin},
		{"sys", Builtin},
		{"os.path", Builtin},
		{"requests", ThirdParty},
		{"pyramid", ThirdParty},
		{"", Application},
		{"__main__", Application},
		// force setuptools-distutils detection
		{"distutils", ThirdParty},
	}
	for _, tt := range tests {
		req.Equal(tt.expected, c.Classify(tt.module, settings), "Classify(%q)", tt.module)
	}
}

func TestClassify_UnclassifiableApplicationModules(t *testing.T) {
	req := require.New(t)
	c := newTestClassifier(NewPathResolver())
	dir := tmpDirResolved(t)

	settings := Settings{
		ApplicationDirectories:           []string{dir},
		UnclassifiableApplicationModules: []string{"c_module", "__future__"},
	}
	req.Equal(Application, c.Classify("c_module", settings))
	req.Equal(Future, c.Classify("__future__", settings),
		"static classifications win over the unclassifiable escape hatch")

	// without the setting the module is unresolvable
	plain := Settings{ApplicationDirectories: []string{dir}}
	req.Equal(ThirdParty, c.Classify("c_module", plain))
}

func TestClassify_LocalFileIsApplication(t *testing.T) {
	req := require.New(t)
	c := newTestClassifier(NewPathResolver())
	dir := tmpDirResolved(t)
	writeFile(t, filepath.Join(dir, "my_file.py"))

	settings := Settings{ApplicationDirectories: []string{dir}}
	req.Equal(Application, c.Classify("my_file", settings))
}

func TestClassify_LocalPackageIsApplication(t *testing.T) {
	req := require.New(t)
	c := newTestClassifier(NewPathResolver())
	dir := tmpDirResolved(t)
	writeFile(t, filepath.Join(dir, "my_package", "__init__.py"))

	settings := Settings{ApplicationDirectories: []string{dir}}
	req.Equal(Application, c.Classify("my_package", settings))
}

func TestClassify_EmptyDirectoryIsNotPackage(t *testing.T) {
	req := require.New(t)
	c := newTestClassifier(NewPathResolver())
	dir := tmpDirResolved(t)
	req.NoError(os.MkdirAll(filepath.Join(dir, "my_package"), 0o755))

	settings := Settings{ApplicationDirectories: []string{dir}}
	req.Equal(ThirdParty, c.Classify("my_package", settings))
}

func TestClassify_SymlinkedFileIsNotApplication(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no symlink support")
	}
	req := require.New(t)
	c := newTestClassifier(NewPathResolver())
	dir := tmpDirResolved(t)
	writeFile(t, filepath.Join(dir, "dest_file.py"))
	req.NoError(os.Symlink(
		filepath.Join(dir, "dest_file.py"),
		filepath.Join(dir, "src_file.py"),
	))

	settings := Settings{ApplicationDirectories: []string{dir}}
	req.Equal(ThirdParty, c.Classify("src_file", settings))
}

func TestClassify_ApplicationDirectories(t *testing.T) {
	req := require.New(t)
	c := newTestClassifier(NewPathResolver())
	dir := tmpDirResolved(t)
	writeFile(t, filepath.Join(dir, "tests", "testing", "__init__.py"))

	// not below the single application root
	req.Equal(ThirdParty, c.Classify("testing",
		Settings{ApplicationDirectories: []string{dir}}))
	// application with the extra directory configured
	req.Equal(Application, c.Classify("testing",
		Settings{ApplicationDirectories: []string{dir, filepath.Join(dir, "tests")}}))
}

func TestClassify_ResolvedOnSearchPathIsBuiltin(t *testing.T) {
	req := require.New(t)
	dir := tmpDirResolved(t)
	libDir := filepath.Join(dir, "lib")
	writeFile(t, filepath.Join(libDir, "shutil_like.py"))

	appDir := filepath.Join(dir, "app")
	req.NoError(os.MkdirAll(appDir, 0o755))

	c := newTestClassifier(NewPathResolver(libDir))
	settings := Settings{ApplicationDirectories: []string{appDir}}
	req.Equal(Builtin, c.Classify("shutil_like", settings),
		"resolvable outside installed-packages and not via PYTHONPATH looks standard")
}

func TestClassify_SitePackagesIsThirdParty(t *testing.T) {
	req := require.New(t)
	dir := tmpDirResolved(t)
	siteDir := filepath.Join(dir, "site-packages")
	writeFile(t, filepath.Join(siteDir, "installed_pkg", "__init__.py"))

	appDir := filepath.Join(dir, "app")
	req.NoError(os.MkdirAll(appDir, 0o755))

	c := newTestClassifier(NewPathResolver(siteDir))
	settings := Settings{ApplicationDirectories: []string{appDir}}
	req.Equal(ThirdParty, c.Classify("installed_pkg", settings))
}

func TestClassify_NamespacePackageInSitePackages(t *testing.T) {
	req := require.New(t)
	dir := tmpDirResolved(t)
	siteDir := filepath.Join(dir, "site-packages")
	req.NoError(os.MkdirAll(filepath.Join(siteDir, "a"), 0o755))

	appDir := filepath.Join(dir, "app")
	req.NoError(os.MkdirAll(appDir, 0o755))

	c := newTestClassifier(NewPathResolver(siteDir))
	settings := Settings{ApplicationDirectories: []string{appDir}}
	req.Equal(ThirdParty, c.Classify("a", settings))
}

func TestClassify_PythonPathExplainsModule(t *testing.T) {
	req := require.New(t)
	dir := tmpDirResolved(t)
	ppth := filepath.Join(dir, "ppth")
	writeFile(t, filepath.Join(ppth, "f.py"))

	appDir := filepath.Join(dir, "app")
	req.NoError(os.MkdirAll(appDir, 0o755))
	settings := Settings{ApplicationDirectories: []string{appDir}}

	resolver := NewPathResolver(ppth)

	// visible only because of PYTHONPATH: third party
	withEnv := NewWithEnv(resolver, func(key string) string {
		if key == "PYTHONPATH" {
			return ppth
		}
		return ""
	})
	req.Equal(ThirdParty, withEnv.Classify("f", settings))

	// same path without the override looks standard
	withoutEnv := newTestClassifier(resolver)
	req.Equal(Builtin, withoutEnv.Classify("f", settings))
}

func TestClassify_PythonPathDotStillApplication(t *testing.T) {
	req := require.New(t)
	dir := tmpDirResolved(t)
	writeFile(t, filepath.Join(dir, "f.py"))

	settings := Settings{ApplicationDirectories: []string{dir}}
	c := NewWithEnv(NewPathResolver(dir), func(key string) string {
		if key == "PYTHONPATH" {
			return dir
		}
		return ""
	})
	req.Equal(Application, c.Classify("f", settings),
		"the local-file check runs before the PYTHONPATH exclusion")
}

type fakeResolver struct {
	info ModuleInfo
}

func (r fakeResolver) FindModule(string) ModuleInfo { return r.info }

func TestClassify_ResolverReportedBuiltin(t *testing.T) {
	req := require.New(t)
	dir := tmpDirResolved(t)
	settings := Settings{ApplicationDirectories: []string{dir}}

	c := newTestClassifier(fakeResolver{info: ModuleInfo{
		Found:   true,
		Path:    BuiltinSentinel,
		Builtin: true,
	}})
	req.Equal(Builtin, c.Classify("embedded_thing", settings))
}

func TestClassify_GhostPathDoesNotError(t *testing.T) {
	req := require.New(t)
	dir := tmpDirResolved(t)
	settings := Settings{ApplicationDirectories: []string{dir}}

	// the runtime claims a location that is not present on disk
	c := newTestClassifier(fakeResolver{info: ModuleInfo{
		Found: true,
		Path:  filepath.Join(dir, "does", "not", "exist.py"),
	}})
	req.Equal(Builtin, c.Classify("ghost", settings))
}

func TestClassify_CacheAndClear(t *testing.T) {
	req := require.New(t)
	c := newTestClassifier(NewPathResolver())
	dir := tmpDirResolved(t)
	settings := Settings{ApplicationDirectories: []string{dir}}

	req.Equal(ThirdParty, c.Classify("my_file", settings))

	// the memo holds the stale answer until cleared
	writeFile(t, filepath.Join(dir, "my_file.py"))
	req.Equal(ThirdParty, c.Classify("my_file", settings))

	c.ClearCache()
	req.Equal(Application, c.Classify("my_file", settings))
}

func TestClassify_SettingsArePartOfCacheKey(t *testing.T) {
	req := require.New(t)
	c := newTestClassifier(NewPathResolver())
	dir := tmpDirResolved(t)
	writeFile(t, filepath.Join(dir, "mod.py"))

	other := tmpDirResolved(t)
	req.Equal(Application, c.Classify("mod", Settings{ApplicationDirectories: []string{dir}}))
	req.Equal(ThirdParty, c.Classify("mod", Settings{ApplicationDirectories: []string{other}}))
}

func TestClassificationString(t *testing.T) {
	req := require.New(t)
	req.Equal("FUTURE", Future.String())
	req.Equal("BUILTIN", Builtin.String())
	req.Equal("THIRD_PARTY", ThirdParty.String())
	req.Equal("APPLICATION", Application.String())
}
