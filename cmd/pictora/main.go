package main

import (
	"context"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/fx"

	"github.com/pictora/pictora/internal/auth"
	"github.com/pictora/pictora/internal/config"
	"github.com/pictora/pictora/internal/dispatch"
	"github.com/pictora/pictora/internal/feed"
	"github.com/pictora/pictora/internal/logger"
	"github.com/pictora/pictora/internal/profile"
	"github.com/pictora/pictora/internal/requester"
	"github.com/pictora/pictora/internal/session"
	"github.com/pictora/pictora/internal/token"
)

func main() {
	Execute()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pictora",
	Short: "A photo-feed client for Unsplash-style APIs",
	Long: `Pictora is a CLI client for Unsplash-style photo APIs.
It handles the OAuth login flow, browses the paginated photo feed,
toggles likes and shows the authenticated user's profile.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Place version check in PreRun to ensure flags are parsed first
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags()
	rootCmd.PersistentFlags().AddFlagSet(pflag.CommandLine)
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(likeCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(logoutCmd)
}

// services collects everything the commands consume from the core.
type services struct {
	fx.In

	Config   *config.Config
	Queue    *dispatch.Queue
	Tokens   token.Store
	Auth     *auth.Service
	Helper   *auth.Helper
	Profile  *profile.Service
	Avatar   *profile.ImageService
	Feed     *feed.Service
	Sessions *session.Coordinator
}

// runApp loads configuration, wires the core once and hands the wired
// services to run.
func runApp(run func(s services) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.InitLogger(&cfg.Logging); err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	var runErr error
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg),
		dispatch.Module,
		session.Module,
		requester.Module,
		token.Module,
		auth.Module,
		profile.Module,
		feed.Module,
		fx.Invoke(func(s services) {
			runErr = run(s)
		}),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		return err
	}
	return runErr
}
