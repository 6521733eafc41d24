package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sstrack/sstrack/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `
	  ___ ___| |_ _ __ __ _  ___| | __
	 / __/ __| __| '__/ _' |/ __| |/ /
	 \__ \__ \ |_| | | (_| | (__|   <
	 |___/___/\__|_|  \__,_|\___|_|\_\

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sstrack",
	Short: "Track ScoreSaber player stats and post the changes to Discord.",
	Long: LOGO + `sstrack polls ScoreSaber player profiles, keeps the latest snapshot of each
player in SQLite and posts what changed since the previous poll to a Discord
webhook. Run it once with 'stats', keep it going with 'track', or start the
command daemon with 'serve'.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sstrack.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("dbpath", "", "Path to SQLite DB file (default: ~/.config/sstrack/sstrack.sqlite)")
	_ = viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("dbpath"))
}

func setDefaults() {
	viper.SetDefault("db_path", "")
	viper.SetDefault("webhook_url", "")
	viper.SetDefault("webhooks", map[string]interface{}{})
	viper.SetDefault("provider.base_url", "https://scoresaber.com/api")
	viper.SetDefault("provider.timeout", "15s")
	viper.SetDefault("provider.requests_per_minute", 300)
	viper.SetDefault("provider.retry_max", 0)
	viper.SetDefault("tracking.default_interval", "6s")
	viper.SetDefault("notify.color", 0)
	viper.SetDefault("notify.username", "")
	viper.SetDefault("notify.avatar_url", "")
	viper.SetDefault("notify.highlights", map[string]interface{}{"ColGuy20": 5505024})
	viper.SetDefault("serve.listen", "127.0.0.1:8080")
	viper.SetDefault("serve.username", "")
	viper.SetDefault("serve.password", "")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".sstrack")
		viper.SetConfigType("yaml")
	}

	// SSTRACK_WEBHOOK_URL, SSTRACK_PROVIDER_TIMEOUT, ...
	viper.SetEnvPrefix("sstrack")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.sstrack.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
