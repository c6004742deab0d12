package classify

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"pysort/pkg/pystd"
)

// packagesPathMarker flags paths under an installed-packages directory
// (site-packages, dist-packages).
const packagesPathMarker = "-packages" + string(os.PathSeparator)

// pythonPathEnv is the search-path override variable whose entries must
// not be mistaken for standard-library locations.
const pythonPathEnv = "PYTHONPATH"

// Classifier resolves module provenance. Given fixed resolver, env and
// filesystem state it is a pure function of (base name, settings), so
// results are memoized; ClearCache invalidates the memo when the caller
// changes that surrounding state.
type Classifier struct {
	resolver Resolver
	getenv   func(string) string

	mu    sync.Mutex
	cache map[cacheKey]Classification
}

type cacheKey struct {
	base     string
	settings string
}

// New returns a classifier backed by the given resolver and the process
// environment.
func New(resolver Resolver) *Classifier {
	return NewWithEnv(resolver, os.Getenv)
}

// NewWithEnv is New with an explicit environment lookup, for callers
// that need to pin PYTHONPATH.
func NewWithEnv(resolver Resolver, getenv func(string) string) *Classifier {
	return &Classifier{
		resolver: resolver,
		getenv:   getenv,
		cache:    make(map[cacheKey]Classification),
	}
}

// ClearCache drops all memoized results.
func (c *Classifier) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[cacheKey]Classification)
}

// Classify determines the provenance of a module name. Only the first
// dotted segment is considered. It never fails: unresolvable names are
// third-party and filesystem errors count as absence.
func (c *Classifier) Classify(name string, settings Settings) Classification {
	base, _, _ := strings.Cut(name, ".")
	key := cacheKey{base: base, settings: settings.cacheKey()}

	c.mu.Lock()
	ret, ok := c.cache[key]
	c.mu.Unlock()
	if ok {
		return ret
	}

	ret = c.classifyUncached(base, settings)

	c.mu.Lock()
	c.cache[key] = ret
	c.mu.Unlock()
	return ret
}

func (c *Classifier) classifyUncached(base string, settings Settings) Classification {
	switch base {
	case "":
		// relative imports: `from .foo import bar`
		return Application
	case "__future__":
		return Future
	case "__main__":
		return Application
	case "distutils":
		// force distutils to be "third party" after being gobbled by
		// setuptools
		return ThirdParty
	}
	if settings.isUnclassifiable(base) {
		return Application
	}
	if pystd.IsStandardModule(base) {
		return Builtin
	}

	appDirs := settings.applicationDirectories()
	if findLocal(appDirs, base) {
		return Application
	}

	info := c.resolver.FindModule(base)
	if info.Builtin {
		return Builtin
	}
	if info.Found &&
		!strings.Contains(info.Path, packagesPathMarker) &&
		!c.dueToPythonPath(info.Path) {
		// Resolves through the normal search mechanism, outside any
		// installed-packages directory, and not merely visible via the
		// PYTHONPATH override: assume standard distribution.
		return Builtin
	}
	return ThirdParty
}

// findLocal probes the application directories for a same-named package
// (a directory with at least one entry) or module file, then confirms
// the candidate really lives inside one of those directories and is not
// reached through a symlink. A symlink usually means a virtualenv
// nested in the project, which is third-party code.
func findLocal(appDirs []string, base string) bool {
	for _, dir := range appDirs {
		pkgDir := filepath.Join(dir, base)
		if info, err := os.Lstat(pkgDir); err == nil && info.IsDir() && dirHasEntries(pkgDir) {
			return isLocalNotSymlinked(pkgDir, appDirs)
		}
		if modPath := pkgDir + ".py"; lstatExists(modPath) {
			return isLocalNotSymlinked(modPath, appDirs)
		}
	}
	return false
}

func isLocalNotSymlinked(modulePath string, appDirs []string) bool {
	absPath, err := filepath.Abs(modulePath)
	if err != nil {
		return false
	}
	for _, dir := range appDirs {
		if isLocalPath(absPath, dir) {
			return true
		}
	}
	return false
}

func isLocalPath(absPath, appDir string) bool {
	localPath, err := filepath.Abs(appDir)
	if err != nil {
		return false
	}
	if !hasPathPrefix(absPath, localPath) {
		return false
	}
	// Reject anything nested deeper than one level below the
	// application directory.
	rest := absPath[len(localPath)+1:]
	if strings.ContainsRune(rest, os.PathSeparator) {
		return false
	}
	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		// stale symlink or unreadable parent
		return false
	}
	if !normCaseEqual(absPath, realPath) {
		return false
	}
	_, err = os.Stat(realPath)
	return err == nil
}

// hasPathPrefix expects two absolute paths and requires the volumes to
// match before accepting the textual prefix relationship.
func hasPathPrefix(path, prefix string) bool {
	if !strings.EqualFold(filepath.VolumeName(path), filepath.VolumeName(prefix)) {
		return false
	}
	return strings.HasPrefix(normCase(path), normCase(prefix)+string(os.PathSeparator))
}

// normCase normalizes case the way the platform's filesystem does.
func normCase(path string) string {
	if runtime.GOOS == "windows" {
		return strings.ToLower(path)
	}
	return path
}

func normCaseEqual(path1, path2 string) bool {
	return normCase(path1) == normCase(path2)
}

func dirHasEntries(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}

func lstatExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// dueToPythonPath reports whether a resolved module path is explained
// purely by the PYTHONPATH override, the current directory excluded.
func (c *Classifier) dueToPythonPath(modulePath string) bool {
	raw := c.getenv(pythonPathEnv)
	if raw == "" {
		return false
	}

	dirs := make(map[string]bool)
	for _, p := range filepath.SplitList(raw) {
		if p == "" {
			continue
		}
		dirs[realPath(p)] = true
	}
	delete(dirs, realPath("."))

	return dirs[filepath.Dir(realPath(modulePath))]
}

// realPath is a best-effort symlink-resolved absolute path; paths that
// do not exist come back cleaned but unresolved.
func realPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
