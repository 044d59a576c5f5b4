package cli

import (
	"github.com/spf13/cobra"
)

func newDeleteCmd(g *globalOptions) *cobra.Command {
	cmd := newRequestCmd(g, "DELETE", "Make a DELETE request to the specified URL")
	cmd.Example = `  restclient delete https://api.example.com/users/1 --bearer $TOKEN`
	return cmd
}
