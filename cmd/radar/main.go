// Command radar is the terminal client for the Relationship Radar service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/giftology/radar/internal/config"
	"github.com/giftology/radar/internal/logging"
	"github.com/giftology/radar/pkg/sdk"
)

var (
	configPath string
	debug      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "radar",
	Short: "Relationship Radar from the terminal",
	Long: `radar talks to the Relationship Radar service: sign in with a
security code, read the dashboard, contacts, tasks and DOV dates, complete
tasks and send feedback.

Settings come from --config (or RADAR_CONFIG) and RADAR_* variables.`,
	SilenceUsage: true,
}

// app is what every command that talks to the service needs.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	client *sdk.Client
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(config.Path(configPath))
	if err != nil {
		return nil, nil, err
	}
	if debug {
		cfg.Debug = true
		cfg.Logger.Level = "debug"
	}
	log, err := logging.New(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// withClient builds the client for one command run and releases the session
// store afterwards.
func withClient(run func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()

		var once sync.Once
		notice := sdk.WithTimeoutHandler(func(endpoint string) {
			once.Do(func() {
				fmt.Fprintf(os.Stderr, "The service is taking too long to answer (%s). Check your connection and try again.\n", endpoint)
			})
		})

		client, closeStore, err := sdk.NewFromConfig(cmd.Context(), cfg, log, notice)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := closeStore(); cerr != nil {
				log.Warn("failed to close session store", zap.Error(cerr))
				if err == nil {
					err = cerr
				}
			}
		}()
		return run(cmd.Context(), &app{cfg: cfg, log: log, client: client}, args)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $RADAR_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log requests and masked parameters")

	rootCmd.AddCommand(loginCmd, verifyCmd, logoutCmd, whoamiCmd, sessionCmd)
	rootCmd.AddCommand(dashboardCmd, contactsCmd, contactCmd, tasksCmd, taskCmd, completeCmd, dovCmd)
	rootCmd.AddCommand(helpTopicCmd, feedbackCmd, resetPasswordCmd, setupCmd, reportCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
