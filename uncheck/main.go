package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nsbox/userns/shared/version"
)

func main() {
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	log.SetLevel(log.InfoLevel)
	log.SetOutput(os.Stderr)

	checkCmd := cmdCheck{}
	app := checkCmd.command()
	app.Use = "uncheck"
	app.Short = "Report whether a namespace session is alive, or kill it"
	app.Long = `Description:
  uncheck reports whether the session leader named by a PID file
  published by unspawn is still alive, and can optionally kill it.
`
	app.SilenceUsage = true
	app.SilenceErrors = true
	app.CompletionOptions = cobra.CompletionOptions{DisableDefaultCmd: true}

	app.PersistentFlags().BoolP("help", "h", false, "Print help")
	app.SetVersionTemplate("{{.Version}}\n")
	app.Version = version.Version

	err := app.Execute()
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
