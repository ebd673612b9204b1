// Package cli wires the explorer core, directory service, watcher, and
// session store into an interactive terminal host.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagDB      string
	flagNoWatch bool
	flagHidden  bool
)

// rootCmd is the root command for arbor.
var rootCmd = &cobra.Command{
	Use:   "arbor [path]",
	Short: "Live, editable file-tree explorer",
	Long: `arbor mirrors a directory subtree, lets you expand folders, select
entries, and create/rename/delete them, while staying in sync with
out-of-band filesystem changes.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		return browse(root)
	},
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVar(&flagDB, "db", "", "session database path (default: user config dir)")
	rootCmd.Flags().BoolVar(&flagNoWatch, "no-watch", false, "disable filesystem watching")
	rootCmd.Flags().BoolVar(&flagHidden, "hidden", false, "show hidden files")
	rootCmd.AddCommand(configCmd)
}
