// internal/cli/overrides.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/giftscrape/internal/ui"
)

// overridesCmd lists the active site override registry
var overridesCmd = &cobra.Command{
	Use:   "overrides",
	Short: "List site overrides in match order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application := GetAppFromCmd(cmd)
		if application == nil {
			return fmt.Errorf("application not initialized")
		}

		const width = 16
		for i, o := range application.Registry.Overrides() {
			fmt.Printf("\n%s %s\n", ui.Bold(fmt.Sprintf("%d.", i+1)), ui.Bold(o.Name))
			fmt.Println(ui.Field("domain_pattern", width, o.DomainPattern))
			for _, f := range []struct{ label, value string }{
				{"image_rule", o.ImageRule},
				{"image_selector", o.ImageSelector},
				{"price_selector", o.PriceSelector},
				{"title_separator", o.TitleSeparator},
			} {
				if f.value != "" {
					fmt.Println(ui.Field(f.label, width, f.value))
				}
			}
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(overridesCmd)
}
