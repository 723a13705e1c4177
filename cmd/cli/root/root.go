package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "jobtrack",
	Short: "Job application tracking CLI",
	Long:  "Command line client for the jobtrack job-application tracking API",
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// GetRoot returns the root command for registering subcommands.
func GetRoot() *cobra.Command {
	return RootCmd
}
