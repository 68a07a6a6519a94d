package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nsbox/userns/shared/version"
)

type cmdGlobal struct {
	flagHelp    bool
	flagVersion bool
}

func main() {
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	log.SetLevel(log.InfoLevel)
	log.SetOutput(os.Stderr)

	spawnCmd := cmdSpawn{}
	app := spawnCmd.command()
	app.Use = "unspawn"
	app.Short = "Open a namespace session and publish its PID file"
	app.Long = `Description:
  unspawn creates a pseudo-container: a process cloned into a fresh set of
  Linux namespaces, advertised at a well-known PID file that unenter and
  uncheck use to attach to or query it later.
`
	app.SilenceUsage = true
	app.SilenceErrors = true
	app.CompletionOptions = cobra.CompletionOptions{DisableDefaultCmd: true}
	app.Args = cobra.ArbitraryArgs

	globalCmd := cmdGlobal{}
	app.PersistentFlags().BoolVar(&globalCmd.flagVersion, "version", false, "Print version number")
	app.PersistentFlags().BoolVarP(&globalCmd.flagHelp, "help", "h", false, "Print help")

	app.SetVersionTemplate("{{.Version}}\n")
	app.Version = version.Version

	leaderCmd := cmdLeader{}
	app.AddCommand(leaderCmd.command())

	err := app.Execute()
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
