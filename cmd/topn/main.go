package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootConfigPath string
var verbose bool

var rootCmd = cobra.Command{
	Use:           "topn",
	Short:         "Render listing announcements from percent-directive templates",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "topn.config.yaml", "Path to topn configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	renderCmd.Flags().String("template", "", "Path to a template file")
	renderCmd.Flags().String("name", "", "Name of a bundled or overridden template")
	renderCmd.Flags().String("context", "", "Context file (.yaml, .yml, .json or .star)")
	renderCmd.Flags().StringArray("set", []string{}, "Set a top-level context key as KEY=VALUE")
	rootCmd.AddCommand(&renderCmd)

	for _, cmd := range []*cobra.Command{&contextCmd, &notifyCmd} {
		cmd.Flags().String("previous", "", "Previous listing snapshot")
		cmd.Flags().String("current", "", "Current listing snapshot")
		cmd.Flags().String("history", "", "Post history file")
		cmd.Flags().Bool("notify-exits", false, "Include coins that left the listing")
		_ = cmd.MarkFlagRequired("previous")
		_ = cmd.MarkFlagRequired("current")
		rootCmd.AddCommand(cmd)
	}
	notifyCmd.Flags().Bool("prompt", false, "Print the rendered drafting prompt instead of the message")
	notifyCmd.Flags().Bool("write", false, "Save the current snapshot as --previous and append the post to --history")

	templatesCmd.AddCommand(&templatesListCmd)
	templatesCmd.AddCommand(&templatesShowCmd)
	rootCmd.AddCommand(&templatesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}
