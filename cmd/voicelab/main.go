package main

import (
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/voicelab/internal/cli"
)

func main() {
	flags := cli.NewFlags()

	rootCmd := cli.CreateRootCommand(flags, cli.Runners{
		Serve:   func(cmd *cobra.Command, args []string) error { return runServe(cmd, flags) },
		Analyze: func(cmd *cobra.Command, args []string) error { return runAnalyze(cmd, args[0], flags) },
		Score:   func(cmd *cobra.Command, args []string) error { return runScore(args, flags) },
		Words:   func(cmd *cobra.Command, args []string) error { return runWords(flags) },
		Models:  func(cmd *cobra.Command, args []string) error { return runModels(cmd, flags) },
		History: func(cmd *cobra.Command, args []string) error { return runHistory(cmd, flags) },
	})

	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
