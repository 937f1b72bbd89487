package cmd

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/phishscope/phishscope/internal/utils"
	"github.com/phishscope/phishscope/pkg/dispatch"
	"github.com/phishscope/phishscope/pkg/session"
	"github.com/phishscope/phishscope/pkg/whttp"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `	       _     _     _
	 _ __ | |__ (_)___| |__  ___  ___ ___  _ __   ___
	| '_ \| '_ \| / __| '_ \/ __|/ __/ _ \| '_ \ / _ \
	| |_) | | | | \__ \ | | \__ \ (_| (_) | |_) |  __/
	| .__/|_| |_|_|___/_| |_|___/\___\___/| .__/ \___|
	|_|                                   |_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "phishscope",
	Short: "A command-line client for the phishing-detection service.",
	Long: LOGO + `phishscope submits URLs and emails to the remote phishing classifier,
keeps a session history of normalized verdicts, and turns that history into
statistics and exportable audit reports.`,
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
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.phishscope.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".phishscope")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.phishscope.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("api.endpoint", "http://localhost:5000")
	viper.SetDefault("api.token", "")
	viper.SetDefault("api.timeout_seconds", 30)
	viper.SetDefault("batch.concurrency", 5)
	viper.SetDefault("user.id", "")
	viper.SetDefault("user.name", "")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

// newSession builds the session context from config. An empty token yields a
// valid anonymous session.
func newSession() *session.Session {
	return session.Start(
		viper.GetString("user.id"),
		viper.GetString("user.name"),
		viper.GetString("api.token"),
	)
}

// newDispatcher wires the dispatcher from config and the given session
// credential.
func newDispatcher(sess *session.Session) *dispatch.Dispatcher {
	if proxy, _ := rootCmd.PersistentFlags().GetString("proxy"); proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			utils.Log.Fatal("Invalid Proxy String")
		}
		client := whttp.GetDefaultClient()
		client.HTTPClient.Transport = &http.Transport{
			Proxy:           http.ProxyURL(proxyURL),
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return dispatch.New(dispatch.Config{
		Endpoint:    viper.GetString("api.endpoint"),
		Token:       sess.Token,
		Concurrency: viper.GetInt("batch.concurrency"),
		Timeout:     time.Duration(viper.GetInt("api.timeout_seconds")) * time.Second,
	})
}
