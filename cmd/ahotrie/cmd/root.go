package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/ahotrie/internal/app"
	"github.com/corey/ahotrie/internal/logger"
)

var (
	rootVerbose bool
	rootDBPath  string
	rootColor   string
)

var rootCmd = &cobra.Command{
	Use:   "ahotrie",
	Short: "ahotrie: multi-keyword text matching",
	Long: "Finds every occurrence of a set of keywords in text in a single pass.\n" +
		"Keywords come from -k flags, YAML dictionary files, embedded builtins\n" +
		"or dictionaries saved with 'ahotrie dict'.",
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

// projectRoot returns the project root (cwd by default).
func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	return dir
}

// dbPath returns the bbolt path: --db, or .ahotrie/ahotrie.db under the root.
func dbPath() string {
	if rootDBPath != "" {
		return rootDBPath
	}
	return app.NewPaths(projectRoot()).DB
}

func setupLogging(cmd *cobra.Command, args []string) error {
	if rootVerbose {
		l := logger.New(cmd.ErrOrStderr())
		logger.SetLogger(l)
		logger.SetDebugLogger(l)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&rootVerbose, "verbose", "v", false, "Log to stderr")
	pf.StringVar(&rootDBPath, "db", "", "Dictionary store (default: .ahotrie/ahotrie.db)")
	pf.StringVar(&rootColor, "color", "auto", "Color output: auto, always, never")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(replaceCmd)
	rootCmd.AddCommand(firstCmd)
	rootCmd.AddCommand(containsCmd)
	rootCmd.AddCommand(dictCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(configCmd)
}
