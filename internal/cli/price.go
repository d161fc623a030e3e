// internal/cli/price.go
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/giftscrape/internal/engine/extract"
	"github.com/law-makers/giftscrape/internal/ui"
)

var priceCurrency string

// priceCmd normalizes a raw price string without fetching anything
var priceCmd = &cobra.Command{
	Use:   "price <raw>...",
	Short: "Normalize a raw price string",
	Example: `  giftscrape price "1 299,99 €"
  giftscrape price 12.5 --currency USD`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := strings.Join(args, " ")
		price, ok := extract.CleanPriceCurrency(raw, priceCurrency)
		if !ok {
			fmt.Printf("%s %s\n", extract.PriceFree, ui.Dim("(no digits in input)"))
			return nil
		}
		fmt.Println(price)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(priceCmd)
	priceCmd.Flags().StringVar(&priceCurrency, "currency", "", "ISO currency code or symbol (default: detected, else €)")
}
