// cmd/validate.go
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/macro-cli/internal/macro"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <macro.yaml>...",
		Short: "Checks macro files without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs []error
			for _, path := range args {
				n, err := validateMacro(path)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s\n%v\n", path, err)
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%d commands)\n", path, n)
			}
			return errors.Join(errs...)
		},
	}
}

// validateMacro loads path and checks its tree, returning the node count.
func validateMacro(path string) (int, error) {
	m, err := macro.LoadMacro(path)
	if err != nil {
		return 0, err
	}
	tree, err := m.Tree()
	if err != nil {
		return 0, err
	}
	if err := tree.Validate(); err != nil {
		return 0, err
	}
	return tree.Len(), nil
}

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "Lists the command types a macro can use",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range macro.Types() {
				if macro.IsContainer(t) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (block)\n", t)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(t))
			}
		},
	}
}
