package cmd

import (
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nsxbet/sql-assistant/pkg/config"
	"github.com/nsxbet/sql-assistant/pkg/logger"
)

// Version is set at build time with -ldflags "-X github.com/nsxbet/sql-assistant/cmd.Version=..."
var Version = "dev"

var (
	cfgFile string
	// appConfig is loaded once per invocation before any command runs.
	appConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sql-assistant",
	Short: "Generate, check and grade SQL from natural-language requests",
	Long: `SQL Assistant turns natural-language requests into SQL with an LLM and
analyses the result with fast text checks: validation, keyword formatting,
plain-language explanations, optimization notes and table schema hints.

Generated SQL can be graded by a judge model for correctness, intent match
and readability. The text tools are also available as an MCP server.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sql-assistant.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (text, json, yaml)")
	rootCmd.PersistentFlags().StringP("dialect", "d", "", "SQL dialect (postgresql, mysql, sqlite, mssql, oracle)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug output")

	// Bind flags to viper
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("dialect", rootCmd.PersistentFlags().Lookup("dialect"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".sql-assistant" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sql-assistant")
	}

	viper.SetEnvPrefix("SQL_ASSISTANT")
	viper.AutomaticEnv() // read in environment variables that match

	// A missing config file is not an error; setup reports what was used.
	_ = viper.ReadInConfig()
}

// setup initializes logging and loads the configuration for every command.
func setup(cmd *cobra.Command, args []string) error {
	logger.Setup(logger.LevelFromFlags(viper.GetBool("verbose"), viper.GetBool("debug")))

	used := viper.ConfigFileUsed()
	if cfgFile == "" {
		if _, err := os.Stat(used); err != nil {
			used = ""
		}
	}
	slog.Debug("Loading configuration", "file", used)

	cfg, err := config.Load(used)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	// Flags and SQL_ASSISTANT_* variables win over the config file.
	if v := viper.GetString("dialect"); v != "" {
		cfg.Dialect = v
	}
	if v := viper.GetString("output"); v != "" {
		cfg.Output = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	appConfig = cfg
	slog.Debug("Configuration loaded", "dialect", cfg.Dialect, "output", cfg.Output, "provider", cfg.LLM.Provider)
	return nil
}
