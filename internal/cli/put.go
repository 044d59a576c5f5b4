package cli

import (
	"github.com/spf13/cobra"
)

func newPutCmd(g *globalOptions) *cobra.Command {
	cmd := newRequestCmd(g, "PUT", "Make a PUT request to the specified URL")
	cmd.Example = `  restclient put https://api.example.com/users/1 -j @user.json`
	return cmd
}
