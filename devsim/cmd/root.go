// Package cmd provides the command-line interface of devsim.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "devsim",
	Short: "devsim runs DEVS models in logical or real time.",
	Long: `devsim runs DEVS models in logical or real time. Settings come ` +
		`from a YAML file, from DEVSIM_* environment variables (a .env file ` +
		`in the working directory is loaded first) and from flags, the ` +
		`latter taking precedence.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadDotEnv(".env")
	},
	SilenceUsage: true,
}

// loadDotEnv adds the variables of the file to the environment, without
// overriding the variables that are already set.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}

	if err := godotenv.Load(path); err != nil {
		logrus.Warnf("cannot load %s: %v", path, err)
	}
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
