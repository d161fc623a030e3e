package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Log in JSON format")
	cmd.PersistentFlags().String("proxy", "", "HTTP/SOCKS5 proxies, comma separated (e.g., http://localhost:8080)")
	cmd.PersistentFlags().String("timeout", DefaultFetchTimeout.String(), "Page fetch timeout")
	cmd.PersistentFlags().String("search-timeout", DefaultExternalTimeout.String(), "Image search timeout")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().Bool("chrome-tls", DefaultChromeTLS, "Use a Chrome TLS fingerprint for page fetches")
	cmd.PersistentFlags().Int("min-title-length", DefaultMinTitleLength, "Shortest title accepted from a page")
	cmd.PersistentFlags().String("config", "", "Path to configuration file (optional)")
}
