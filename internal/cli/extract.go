// internal/cli/extract.go
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/law-makers/giftscrape/internal/app"
	"github.com/law-makers/giftscrape/internal/ui"
	"github.com/law-makers/giftscrape/internal/utils/output"
	"github.com/law-makers/giftscrape/pkg/models"
)

var (
	outputPath  string
	showSources bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <url>...",
	Short: "Extract title, image and price from product URLs",
	Long: `Fetches each URL once and resolves title, image and price through the
strategy chains. Extraction never fails: missing data falls back to a
URL-derived title, a placeholder or "Prix libre".

Several URLs are processed in parallel; results keep the input order.`,
	Example: `  # Single product
  giftscrape extract https://www.amazon.fr/dp/B0ABCDEFGH

  # Several products saved as CSV
  giftscrape extract https://a.test/p1 https://b.test/p2 --output gifts.csv

  # Print JSON to stdout with custom headers
  giftscrape extract https://shop.test/item -o - -H "Cookie: consent=1"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Save results to a file (.json, .csv, .md) or \"-\" for JSON on stdout")
	extractCmd.Flags().IntP("concurrency", "c", 0, "Parallel extractions (0 = auto)")
	extractCmd.Flags().StringArrayP("header", "H", []string{}, "Extra request header (e.g., -H \"Cookie: a=b\")")
	extractCmd.Flags().BoolVar(&showSources, "sources", false, "Show which strategy produced each field")
}

func runExtract(cmd *cobra.Command, args []string) error {
	application := GetAppFromCmd(cmd)
	if application == nil {
		return fmt.Errorf("application not initialized")
	}

	toFile := outputPath != "" && outputPath != "-"
	if toFile {
		if _, err := output.ForPath(outputPath); err != nil {
			return err
		}
	}

	ctx := application.Logger.WithContext(cmd.Context())

	start := time.Now()
	var bar *progressbar.ProgressBar
	if len(args) > 1 && showProgress(application) {
		bar = progressbar.NewOptions(len(args),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Extracting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
	}

	results := application.Batch.Run(ctx, args, func(models.ExtractResult) {
		if bar != nil {
			_ = bar.Add(1)
		}
	})
	if bar != nil {
		_ = bar.Finish()
	}

	products := make([]models.Product, len(results))
	for i, res := range results {
		products[i] = res.Product
	}

	log.Debug().
		Int("urls", len(args)).
		Dur("elapsed", time.Since(start)).
		Msg("Extraction finished")

	switch {
	case outputPath == "-":
		return output.WriteJSON(os.Stdout, products)
	case toFile:
		if err := output.Save(outputPath, products); err != nil {
			return fmt.Errorf("failed to write %s: %w", outputPath, err)
		}
		fmt.Fprintf(os.Stderr, "%s Saved %d result(s) to %s\n", ui.Success("✓"), len(products), outputPath)
		return nil
	}

	for _, res := range results {
		printProduct(res)
	}
	return nil
}

func showProgress(a *app.Application) bool {
	return !a.Config.JSONLog && a.Config.LogLevel != "debug" && a.Config.LogLevel != "error"
}

func printProduct(res models.ExtractResult) {
	p := res.Product
	const width = 7

	fmt.Println()
	fmt.Println(ui.Field("URL", width, p.URL))
	fmt.Println(ui.Field("Title", width, p.Title+sourceSuffix(p, models.FieldTitle)))
	image := p.Image
	if image == "" {
		image = ui.Dim("(none)")
	}
	fmt.Println(ui.Field("Image", width, image+sourceSuffix(p, models.FieldImage)))
	fmt.Println(ui.Field("Price", width, p.Price+sourceSuffix(p, models.FieldPrice)))
	if showSources {
		fmt.Println(ui.Field("Took", width, res.Duration.Round(time.Millisecond).String()))
	}
}

func sourceSuffix(p models.Product, field string) string {
	if !showSources {
		return ""
	}
	source, ok := p.Sources[field]
	if !ok {
		return ""
	}
	return " " + ui.Dim("["+strings.TrimSpace(source)+"]")
}
