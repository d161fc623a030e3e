// internal/cli/root.go
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/law-makers/giftscrape/internal/app"
	"github.com/law-makers/giftscrape/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "giftscrape",
	Short: "Extract title, image and price from any product page",
	Long: `Giftscrape turns an e-commerce product URL into a best-effort {title, image, price}.

Each field is resolved by an ordered chain of strategies: Open Graph tags,
JSON-LD structured data, site-specific selectors, a page scan, and finally
the URL itself. Anti-bot pages are detected and never leak into results.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command under ctx and returns the process exit code
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func init() {
	// Lazily initialize the application before running commands (avoid starting app for -h/help)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		application, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		SetApp(cmd, application)
		return nil
	}

	// Ensure app is closed after command runs
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		application := GetAppFromCmd(cmd)
		if application == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = application.Close(ctx)
		SetApp(cmd, nil)
	}

	// Register centralized flags
	config.RegisterFlags(rootCmd)

	// Customize help and version flag descriptions
	rootCmd.Flags().BoolP("help", "h", false, "Help for giftscrape")
	rootCmd.Flags().Bool("version", false, "Version for giftscrape")

	// Disable the default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.SetHelpFunc(customHelpFunc)
	rootCmd.SetUsageFunc(customUsageFunc)
}
