// cmd/vars.go
package cmd

import (
	"fmt"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/macro-cli/internal/variables"
)

func newVarsCmd() *cobra.Command {
	varsCmd := &cobra.Command{
		Use:   "vars",
		Short: "Reads and writes the configured variable store",
	}

	varsCmd.AddCommand(&cobra.Command{
		Use:   "get <name>",
		Short: "Prints one variable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			v, ok, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("variable %q is not set", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	})

	varsCmd.AddCommand(&cobra.Command{
		Use:   "set <name> <value>",
		Short: "Stores one variable",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Set(cmd.Context(), args[0], args[1])
		},
	})

	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Prints every variable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			vars, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(cmd.OutOrStdout()).Encode(vars)
			}
			names := make([]string, 0, len(vars))
			for name := range vars {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", name, vars[name])
			}
			return nil
		},
	}
	listCmd.Flags().BoolVar(&asJSON, "json", false, "Print a JSON object instead of name=value lines.")
	varsCmd.AddCommand(listCmd)
	return varsCmd
}

func openStore(cmd *cobra.Command) (variables.Store, error) {
	cfg, err := getConfig(cmd)
	if err != nil {
		return nil, err
	}
	return variables.Open(cmd.Context(), cfg.Variables())
}
