package errors

import "errors"

// Sentinel errors surfaced by the import statement model.
var (
	// ErrParseMismatch is returned when source text does not parse as
	// the requested concrete statement shape.
	ErrParseMismatch = errors.New("statement shape does not match requested import type")

	// ErrMalformedStatement is returned when a single-name-only
	// operation is applied to a multi-name statement.
	ErrMalformedStatement = errors.New("operation requires a single-name import statement")
)

// Error message constants for the pysort application
const (
	// Parsing errors
	ErrMsgFailedToLoadGrammar = "failed to load python grammar"
	ErrMsgInvalidSyntax       = "invalid python syntax"
	ErrMsgMultipleStatements  = "expected exactly one statement"
	ErrMsgNotAnImport         = "statement is not an import"

	// File processing errors
	ErrMsgFailedToReadFile  = "failed to read file"
	ErrMsgFailedToParseFile = "failed to parse file"
	ErrMsgFailedToWriteFile = "failed to write file"

	// Directory processing errors
	ErrMsgFailedToCheckPath    = "failed to check path"
	ErrMsgFailedToFindPyFiles  = "failed to find Python files in directory"
	ErrMsgFilesFailedToProcess = "%d files failed to process"

	// Info/warning messages
	WarnMsgProcessingDirWithoutInPlace = "Processing directory without --in-place flag. No files will be modified."
	InfoMsgUseInPlaceFlag              = "Use --in-place flag to modify files or specify a single file for stdout output."
	InfoMsgNoPyFilesFound              = "No Python files found in directory: %s"
	InfoMsgFoundPyFiles                = "Found %d Python files in directory: %s"
	InfoMsgProcessedFiles              = "Processed: %s"
	InfoMsgErrorProcessing             = "Error processing %s: %v"
	InfoMsgProcessedCount              = "Processed %d files successfully"
	InfoMsgErrorCount                  = "%d files had errors"
)
