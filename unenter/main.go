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

	enterCmd := cmdEnter{}
	app := enterCmd.command()
	app.Use = "unenter"
	app.Short = "Attach a new process to an existing namespace session"
	app.Long = `Description:
  unenter joins the namespaces, environment, and filesystem root of a
  session previously created by unspawn, then runs a command inside it.
`
	app.SilenceUsage = true
	app.SilenceErrors = true
	app.CompletionOptions = cobra.CompletionOptions{DisableDefaultCmd: true}
	app.Args = cobra.ArbitraryArgs

	app.PersistentFlags().BoolP("help", "h", false, "Print help")
	app.SetVersionTemplate("{{.Version}}\n")
	app.Version = version.Version

	err := app.Execute()
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
