package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/readstack/pkg/layout"
	"github.com/matzehuels/readstack/pkg/pipeline"
)

// completionShells lists the shells cobra can generate scripts for.
var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for readstack.

Besides subcommands, the scripts complete output formats, packing orders and
track file extensions.

  bash:       source <(readstack completion bash)
  zsh:        readstack completion zsh > "${fpath[1]}/_readstack"
  fish:       readstack completion fish | source
  powershell: readstack completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

// completeFormats completes the last item of a comma-separated format list,
// skipping formats already named.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix, current := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix, current = toComplete[:i+1], toComplete[i+1:]
	}
	used := make(map[string]bool)
	for _, f := range strings.Split(prefix, ",") {
		used[strings.TrimSpace(f)] = true
	}

	var out []string
	for _, f := range []string{pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF, pipeline.FormatJSON} {
		if !used[f] && strings.HasPrefix(f, current) {
			out = append(out, prefix+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// completeOrders offers the packing orders with a short description each.
func completeOrders(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		string(layout.OrderInput) + "\tkeep file order",
		string(layout.OrderStart) + "\tsort by start coordinate",
		string(layout.OrderEnd) + "\tsort by end coordinate",
	}, cobra.ShellCompDirectiveNoFileComp
}

// registerCompletions attaches value completion to the named flags of cmd.
// Names without a flag on cmd are ignored.
func registerCompletions(cmd *cobra.Command, fns map[string]func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective)) {
	for name, fn := range fns {
		if cmd.Flags().Lookup(name) == nil {
			continue
		}
		_ = cmd.RegisterFlagCompletionFunc(name, fn)
	}
}
