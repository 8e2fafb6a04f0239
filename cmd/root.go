package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fbruell/wpx/extractor"
	"github.com/fbruell/wpx/extractor/model"
	"github.com/fbruell/wpx/extractor/rules/musterbank"
)

// Embedded default configuration (from .wpx.yaml)
const defaultConfigYAML = `
banks:
  - musterbank
output:
  format: json
`

var (
	cfgFile string
	verbose bool
	rootCmd = &cobra.Command{
		Use:   "wpx [filename]",
		Short: "Extract transactions from bank documents",
		Long:  `wpx extracts structured securities transactions out of bank PDF documents`,
		Args:  cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				viper.Set("target", args[0])
				handler(extractCmd, []string{})
				return
			}
			cmd.Help()
		},
	}
)

// bankConstructors maps config bank names to their rule sets.
var bankConstructors = map[string]func(model.SecurityResolver) *extractor.Extractor{
	"musterbank": musterbank.New,
}

// newClient builds the extraction client from the banks enabled in the
// configuration. All registered rule sets share one security cache so
// the same instrument across documents resolves to one record.
func newClient() *extractor.Client {
	securities := model.NewSecurityCache()
	client := extractor.NewClient(securities)

	enabled := viper.GetStringSlice("banks")
	if len(enabled) == 0 {
		for name := range bankConstructors {
			enabled = append(enabled, name)
		}
	}

	for _, name := range enabled {
		build, ok := bankConstructors[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			log.Printf("unknown bank %q in config, skipping", name)
			continue
		}
		client.Register(build(securities))
	}

	return client
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	// Add config flag to root command
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.wpx.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogging() {
	if !verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetFlags(log.Ltime | log.Lmsgprefix)
		log.SetPrefix("INFO: ")
	}
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in current directory and home directory
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Add config paths in order of priority
		viper.AddConfigPath(".")  // First check current directory
		viper.AddConfigPath(home) // Then check home directory
		viper.SetConfigName(".wpx")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file found, use embedded default configuration
			if err := viper.ReadConfig(bytes.NewBufferString(defaultConfigYAML)); err != nil {
				fmt.Printf("Error loading embedded configuration: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Printf("Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}
