// Package cmd implements the cardshop command line.
//
// Running cardshop with no subcommand opens the TUI when stdout is a
// terminal. Every TUI operation also has a subcommand so the shop can be
// scripted.
package cmd

import (
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/coolteam/cardshop/internal/config"
	"github.com/coolteam/cardshop/internal/tui"
	"github.com/coolteam/cardshop/internal/tui/styles"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "cardshop",
	Short: "Terminal storefront for a digital-goods shop",
	Long: `cardshop browses a card shop, places orders, looks orders up and
manages the shop behind the admin password.

Without a subcommand it opens the interactive TUI.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/cardshop/config.yaml)")
	rootCmd.PersistentFlags().String("base-url", "", "shop API endpoint (overrides api.base_url)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("base-url"))
}

func initConfig() {
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CARDSHOP")
	// CARDSHOP_API_BASE_URL for api.base_url
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = viper.ReadInConfig()
}

// interactive reports whether the TUI can take over the terminal. Swapped by
// tests.
var interactive = func() bool {
	return term.IsTerminal(os.Stdout.Fd()) && term.IsTerminal(os.Stdin.Fd())
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if !interactive() {
		return cmd.Help()
	}

	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	palette, err := styles.Resolve(e.fs, e.cfg.TUI.Theme)
	if err != nil {
		return err
	}
	styles.Apply(palette)

	payTypes, err := e.payTypes()
	if err != nil {
		return err
	}

	app := tui.New(tui.Deps{
		Client:       e.client,
		Store:        e.store,
		Logger:       e.logger,
		FS:           e.fs,
		PayTypes:     payTypes,
		ContactType:  e.cfg.Shop.ContactType,
		CopyFeedback: e.cfg.TUI.CopyFeedback(),
	})
	return app.Run(cmd.Context())
}
