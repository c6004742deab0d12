package cmd

import (
	"fmt"

	"fortio.org/log"
	"github.com/spf13/cobra"

	"pysort/pkg/formatter"
	"pysort/pkg/version"
)

const (
	UseDescription   = "pysort [flags] PATH"
	ShortDescription = "Python imports sorter - A tool to group and sort Python imports"
	LongDescription  = `pysort is a command-line tool that groups and sorts Python imports.

It organizes imports into groups:
1. __future__ imports
2. Standard library
3. Third-party packages
4. Application (project-local) modules

Application modules are detected by probing the configured application
directories; by default the project root is inferred from the nearest
pyproject.toml or setup.py.

PATH can be either a single Python file or a directory. When a directory is
specified, all Python source files in the directory and subdirectories will
be processed recursively.`
)

var (
	appDirs        []string
	unclassifiable []string
	inPlace        bool
	verbose        bool
	showVersion    bool
	versionStr     string
)

var rootCmd = &cobra.Command{
	Use:          UseDescription,
	Short:        ShortDescription,
	Long:         LongDescription,
	Args:         validateArgs,
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&appDirs, "app-dirs", []string{}, "Comma-separated list of application directories (default: inferred project root)")
	rootCmd.PersistentFlags().StringSliceVar(&unclassifiable, "unclassifiable", []string{}, "Comma-separated module names to always treat as application modules")
	rootCmd.PersistentFlags().BoolVar(&inPlace, "in-place", false, "Modify the file in place instead of printing to stdout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version information")
}

func validateArgs(cmd *cobra.Command, args []string) error {
	// If version flag is set, we don't need file arguments
	if showVersion {
		return nil
	}
	return cobra.ExactArgs(1)(cmd, args)
}

func run(cmd *cobra.Command, args []string) error {
	// Handle version flag
	if showVersion {
		if verbose {
			fmt.Println(version.Get().String())
		} else {
			fmt.Printf("pysort version %s\n", versionStr)
		}
		return nil
	}

	if verbose {
		log.SetLogLevel(log.Verbose)
	}

	path := args[0]

	g := formatter.New(formatter.Config{
		FilePath:       path, // This will be updated for each file when processing directories
		AppDirs:        appDirs,
		Unclassifiable: unclassifiable,
		InPlace:        inPlace,
	})
	return g.ProcessPath(path)
}

func Execute(version string) error {
	versionStr = version
	return rootCmd.Execute()
}
