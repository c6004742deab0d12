package formatter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/log"

	"pysort/pkg/classify"
	"pysort/pkg/errors"
	"pysort/pkg/imports"
	"pysort/pkg/pyast"
	"pysort/pkg/utils"
)

type Config struct {
	FilePath       string   // path to the Python source file
	AppDirs        []string // application directories for classification
	Unclassifiable []string // module names forced to application
	InPlace        bool     // whether to modify the file in place
}

// formatter handles the import grouping logic
type formatter struct {
	config     Config
	classifier *classify.Classifier
}

// New creates a new formatter for the given configuration. The module
// resolver searches the PYTHONPATH entries, the way the interpreter
// would before reaching its own installation.
func New(config Config) *formatter {
	searchPath := filepath.SplitList(os.Getenv("PYTHONPATH"))
	return &formatter{
		config:     config,
		classifier: classify.New(classify.NewPathResolver(searchPath...)),
	}
}

func (g *formatter) getFilePath() string {
	return g.config.FilePath
}

func (g *formatter) getInPlace() bool {
	return g.config.InPlace
}

func (g *formatter) settings() classify.Settings {
	appDirs := g.config.AppDirs
	if len(appDirs) == 0 {
		// Infer the project boundary from the file being processed.
		if root := utils.GetProjectRoot(g.getFilePath()); root != "" {
			appDirs = []string{root}
		}
	}
	return classify.Settings{
		ApplicationDirectories:           appDirs,
		UnclassifiableApplicationModules: g.config.Unclassifiable,
	}
}

// FormatSource rewrites the leading import block of a Python source
// file: statements are split into single names, deduplicated, grouped
// by provenance and sorted, with groups separated by blank lines. The
// second return reports whether anything changed.
func (g *formatter) FormatSource(src []byte) ([]byte, bool, error) {
	stmts, span, err := pyast.LeadingImports(src)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", errors.ErrMsgFailedToParseFile, err)
	}
	if len(stmts) == 0 {
		return src, false, nil
	}

	var all []imports.Statement
	seen := make(map[any]bool) // Track which statements we've seen
	for _, node := range stmts {
		for _, single := range imports.FromNode(node).Split() {
			if seen[single.Key()] {
				continue
			}
			seen[single.Key()] = true
			all = append(all, single)
		}
	}

	groups := imports.Sort(all, g.settings(), g.classifier)

	var block strings.Builder
	for i, group := range groups {
		if i > 0 {
			block.WriteString("\n")
		}
		for _, stmt := range group {
			block.WriteString(stmt.Render())
		}
	}
	// The statements render with a trailing newline; the span ends
	// before the original one.
	rendered := strings.TrimSuffix(block.String(), "\n")

	var out bytes.Buffer
	out.Write(src[:span.Start])
	out.WriteString(rendered)
	out.Write(src[span.End:])

	result := out.Bytes()
	return result, !bytes.Equal(result, src), nil
}

// ProcessFileWithOutput processes a Python source file with optional
// stdout output
func (g *formatter) ProcessFileWithOutput(verbose bool) error {
	src, err := os.ReadFile(g.getFilePath())
	if err != nil {
		return fmt.Errorf("%s: %w", errors.ErrMsgFailedToReadFile, err)
	}

	output, changed, err := g.FormatSource(src)
	if err != nil {
		return err
	}

	if g.getInPlace() {
		if !changed {
			return nil
		}
		if err := os.WriteFile(g.getFilePath(), output, 0644); err != nil {
			return fmt.Errorf("%s: %w", errors.ErrMsgFailedToWriteFile, err)
		}
		return nil
	}

	if verbose {
		fmt.Print(string(output))
	}
	return nil
}

// ProcessFile processes a Python source file and groups its imports
func (g *formatter) ProcessFile() error {
	return g.ProcessFileWithOutput(true)
}

// ProcessFiles processes multiple Python source files
func (g *formatter) ProcessFiles(filePaths []string) error {
	processedCount := 0
	errorCount := 0

	for _, filePath := range filePaths {
		g.config.FilePath = filePath
		if err := g.ProcessFileWithOutput(false); err != nil {
			log.Errf(errors.InfoMsgErrorProcessing, filePath, err)
			errorCount++
		} else {
			processedCount++
			if g.getInPlace() {
				log.LogVf(errors.InfoMsgProcessedFiles, filePath)
			}
		}
	}

	log.Infof(errors.InfoMsgProcessedCount, processedCount)
	if errorCount > 0 {
		log.Warnf(errors.InfoMsgErrorCount, errorCount)
		return fmt.Errorf(errors.ErrMsgFilesFailedToProcess, errorCount)
	}
	return nil
}

// ProcessPath processes a file or directory path
func (g *formatter) ProcessPath(path string) error {
	isDir, err := utils.IsDirectory(path)
	if err != nil {
		return fmt.Errorf("%s: %w", errors.ErrMsgFailedToCheckPath, err)
	}

	if isDir {
		// When processing directories, in-place mode is recommended
		if !g.getInPlace() {
			log.Warnf(errors.WarnMsgProcessingDirWithoutInPlace)
			log.Infof(errors.InfoMsgUseInPlaceFlag)
		}

		pyFiles, err := utils.FindPythonFiles(path)
		if err != nil {
			return fmt.Errorf("%s: %w", errors.ErrMsgFailedToFindPyFiles, err)
		}

		if len(pyFiles) == 0 {
			log.Infof(errors.InfoMsgNoPyFilesFound, path)
			return nil
		}

		log.Infof(errors.InfoMsgFoundPyFiles, len(pyFiles), path)
		return g.ProcessFiles(pyFiles)
	}

	g.config.FilePath = path
	return g.ProcessFile()
}
