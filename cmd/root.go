package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmdArgs struct {
	ConfigFile string
}

// conf merges flags, POSTBENCH_* environment variables and the config file,
// in that order of precedence.
var conf = viper.New()

var rootCmd = &cobra.Command{
	Use:               "postbench",
	Short:             "postbench is a concurrent http POST benchmark tool",
	Long:              `postbench sends a fixed body with N concurrent workers, R requests each, and reports throughput and latency`,
	Version:           "v0.1.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootCmdArgs.ConfigFile, "config", "", "Config file (json, yaml or toml) to load settings")
}

func initConfig(cmd *cobra.Command, args []string) error {
	conf.SetEnvPrefix("POSTBENCH")
	conf.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	conf.AutomaticEnv()
	if err := conf.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if rootCmdArgs.ConfigFile == "" {
		return nil
	}
	conf.SetConfigFile(rootCmdArgs.ConfigFile)
	if err := conf.ReadInConfig(); err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}
	return nil
}
