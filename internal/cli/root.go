package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// globalOptions holds the persistent flags shared by every request command.
type globalOptions struct {
	configPath string
	profile    string
	timeout    time.Duration
	insecure   bool
	verbose    bool
	noColor    bool
	format     string
}

// NewRootCmd builds the restclient command tree.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:     "restclient",
		Short:   "A fluent REST client for the terminal",
		Version: version,
		Long: `restclient sends HTTP requests built from flags or named profiles and
prints the decoded response. Bodies can be JSON, URL-encoded forms or
multipart uploads; responses can be checked against a JSON Schema and
queried with JSONPath.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "Profile configuration file (YAML or JSON)")
	flags.StringVarP(&g.profile, "profile", "p", "", "Profile to use from the configuration file")
	flags.DurationVarP(&g.timeout, "timeout", "t", 0, "Request timeout (default 30s)")
	flags.BoolVarP(&g.insecure, "insecure", "k", false, "Skip TLS certificate verification")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	flags.BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	flags.StringVarP(&g.format, "output", "o", "text", "Output format: text, json or yaml")

	root.AddCommand(
		newGetCmd(g),
		newHeadCmd(g),
		newPostCmd(g),
		newPatchCmd(g),
		newPutCmd(g),
		newDeleteCmd(g),
	)
	return root
}

// Execute runs the root command. It is called by main.main().
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
