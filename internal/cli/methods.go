package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/paywall-reader/internal/bypass"
)

func newMethodsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the bypass methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), methodTable())
			return err
		},
	}
}

func methodTable() string {
	var b strings.Builder
	for _, m := range bypass.All() {
		fmt.Fprintf(&b, "  %d - %s[url]\n", int(m), strings.TrimPrefix(m.Prefix(), "https://"))
	}
	return b.String()
}
