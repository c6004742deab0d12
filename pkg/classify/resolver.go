package classify

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"

	"pysort/pkg/pystd"
)

// BuiltinSentinel is the synthetic location reported for modules
// compiled into the interpreter, which have no file at all.
const BuiltinSentinel = "(builtin)"

// ModuleInfo is the result of a module resolution probe.
type ModuleInfo struct {
	Found bool
	// Path is the module file, the package directory, a zip archive
	// entry, or BuiltinSentinel.
	Path    string
	Builtin bool
}

// Resolver answers "where would this top-level name be imported from".
type Resolver interface {
	FindModule(base string) ModuleInfo
}

// PathResolver simulates the interpreter's search-path lookup over a
// fixed list of entries. Entries are directories, except that a path
// ending in ".zip" is searched as an archive.
type PathResolver struct {
	SearchPath []string
}

// NewPathResolver returns a resolver over the given search path. The
// current directory is deliberately not implied; callers that want it
// must list it.
func NewPathResolver(searchPath ...string) *PathResolver {
	return &PathResolver{SearchPath: searchPath}
}

func (r *PathResolver) FindModule(base string) ModuleInfo {
	if pystd.IsBuiltinModule(base) {
		return ModuleInfo{Found: true, Path: BuiltinSentinel, Builtin: true}
	}

	// A regular package or module in a later entry still beats a
	// namespace directory in an earlier one; namespace portions only
	// count once the whole path has been scanned.
	namespace := ""
	for _, entry := range r.SearchPath {
		if strings.HasSuffix(strings.ToLower(entry), ".zip") {
			if origin, ok := zipOrigin(entry, base); ok {
				return ModuleInfo{Found: true, Path: origin}
			}
			continue
		}

		pkgDir := filepath.Join(entry, base)
		if isRegularFile(filepath.Join(pkgDir, "__init__.py")) {
			return ModuleInfo{Found: true, Path: pkgDir}
		}
		if modPath := pkgDir + ".py"; isRegularFile(modPath) {
			return ModuleInfo{Found: true, Path: modPath}
		}
		if namespace == "" && isDir(pkgDir) {
			namespace = pkgDir
		}
	}
	if namespace != "" {
		// Namespace package: no single file, report the first
		// search-location directory.
		return ModuleInfo{Found: true, Path: namespace}
	}
	return ModuleInfo{}
}

// zipOrigin probes a zip archive for a module or package, reporting the
// entry path the way a zip loader would. Unreadable archives count as
// absence.
func zipOrigin(archive, base string) (string, bool) {
	rc, err := zip.OpenReader(archive)
	if err != nil {
		return "", false
	}
	defer rc.Close()

	module := base + ".py"
	pkgInit := base + "/__init__.py"
	for _, f := range rc.File {
		switch f.Name {
		case module, pkgInit:
			return filepath.Join(archive, filepath.FromSlash(f.Name)), true
		}
	}
	return "", false
}

// isRegularFile treats any stat failure, permission errors included, as
// absence.
func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
