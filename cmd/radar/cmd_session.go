package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/giftology/radar/internal/config"
	"github.com/giftology/radar/internal/engine"
	"github.com/giftology/radar/internal/logging"
	"github.com/giftology/radar/pkg/sdk"
)

var (
	loginUser     string
	loginPassword string

	migrateDriver   string
	migrateDir      string
	migrateRedisURL string
	migrateSecret   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and have a security code sent",
	Long: `Sign in with your user name and password. The service sends a
six-digit security code; finish with 'radar verify <code>'.

The password may also come from RADAR_PASSWORD.`,
	RunE: withClient(runLogin),
}

var verifyCmd = &cobra.Command{
	Use:   "verify <code>",
	Short: "Submit the security code from login",
	Args:  cobra.ExactArgs(1),
	RunE:  withClient(runVerify),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the current session",
	RunE: withClient(func(ctx context.Context, a *app, _ []string) error {
		if err := a.client.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: withClient(func(ctx context.Context, a *app, _ []string) error {
		resp, err := a.client.UserInfo(ctx)
		if err != nil {
			return err
		}
		if err := resp.Err(); err != nil {
			return err
		}
		return printJSON(resp.Data)
	}),
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or move the stored session",
}

var sessionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the device identity and login state",
	RunE: withClient(func(ctx context.Context, a *app, _ []string) error {
		id, err := a.client.DeviceID(ctx)
		if err != nil {
			return err
		}
		flow, err := a.client.NewFlow(ctx)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"device_id":  logging.Mask(id, 4),
			"state":      flow.State().String(),
			"authorized": a.client.Authorized(ctx),
			"store":      a.cfg.Store.Driver,
		})
	}),
}

var sessionMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy the session to another store",
	Long: `Copy every live session entry from the configured store into the
store described by the --to-* flags, keeping remaining lifetimes. Use it when
moving from the local session file to Redis, or back.`,
	RunE: runMigrate,
}

func runLogin(ctx context.Context, a *app, _ []string) error {
	password := loginPassword
	if password == "" {
		password = os.Getenv("RADAR_PASSWORD")
	}
	if loginUser == "" || password == "" {
		return errors.New("--user and --password (or RADAR_PASSWORD) are required")
	}

	flow, err := a.client.NewFlow(ctx)
	if err != nil {
		return err
	}
	if _, err := flow.Login(ctx, loginUser, password); err != nil {
		return err
	}
	fmt.Println("A security code has been sent. Run 'radar verify <code>' to finish signing in.")
	return nil
}

func runVerify(ctx context.Context, a *app, args []string) error {
	flow, err := a.client.NewFlow(ctx)
	if err != nil {
		return err
	}
	_, err = flow.Verify(ctx, args[0])
	var se *sdk.ServiceError
	if errors.As(err, &se) {
		return fmt.Errorf("%s. Sign in again with 'radar login'", se.Message)
	}
	if err != nil {
		return err
	}
	fmt.Println("Device verified. You are signed in.")
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	target := config.StoreConfig{
		Driver:   migrateDriver,
		Dir:      migrateDir,
		RedisURL: migrateRedisURL,
		Secret:   migrateSecret,
	}
	if target.Dir == "" {
		target.Dir = cfg.Store.Dir
	}
	if target.Driver == cfg.Store.Driver && target.Dir == cfg.Store.Dir && target.RedisURL == cfg.Store.RedisURL {
		return errors.New("source and target store are the same")
	}

	ctx := cmd.Context()
	src, closeSrc, err := sdk.OpenStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open source store: %w", err)
	}
	defer closeSrc()

	dst, closeDst, err := sdk.OpenStore(ctx, target)
	if err != nil {
		return fmt.Errorf("open target store: %w", err)
	}
	defer closeDst()

	n, err := engine.Migrate(ctx, src, dst)
	if err != nil {
		return err
	}
	log.Info("session migrated",
		zap.String("from", cfg.Store.Driver),
		zap.String("to", target.Driver),
		zap.Int("entries", n))
	fmt.Printf("Copied %d entries.\n", n)
	return nil
}

func init() {
	loginCmd.Flags().StringVarP(&loginUser, "user", "u", "", "User name (email)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password")

	sessionMigrateCmd.Flags().StringVar(&migrateDriver, "to-driver", config.DriverRedis, "Target driver: file, memory or redis")
	sessionMigrateCmd.Flags().StringVar(&migrateDir, "to-dir", "", "Target session directory for the file driver")
	sessionMigrateCmd.Flags().StringVar(&migrateRedisURL, "to-redis-url", "", "Target Redis URL")
	sessionMigrateCmd.Flags().StringVar(&migrateSecret, "to-secret", "", "Seal the target store with this secret")

	sessionCmd.AddCommand(sessionStatusCmd, sessionMigrateCmd)
}
