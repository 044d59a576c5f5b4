package cli

import (
	"github.com/spf13/cobra"
)

func newPostCmd(g *globalOptions) *cobra.Command {
	cmd := newRequestCmd(g, "POST", "Make a POST request to the specified URL")
	cmd.Example = `  restclient post https://api.example.com/users -j '{"name":"John"}'
  restclient post https://api.example.com/login -f user=john -f password=secret
  restclient post https://api.example.com/upload -F file=@avatar.png -F title=Avatar`
	return cmd
}

func newPatchCmd(g *globalOptions) *cobra.Command {
	return newRequestCmd(g, "PATCH", "Make a PATCH request to the specified URL")
}
