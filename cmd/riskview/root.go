package main

import "github.com/spf13/cobra"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "riskview",
	Short:         "riskview projects risk backend data into filterable dashboard views.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to riskview.yml")
	rootCmd.AddCommand(serveCmd, projectCmd, exportCmd)
}
