package main

import (
	"os"

	"github.com/jobtrackhq/jobtrack/cmd/cli/auth"
	"github.com/jobtrackhq/jobtrack/cmd/cli/jobs"
	"github.com/jobtrackhq/jobtrack/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	jobs.InitJobs(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
