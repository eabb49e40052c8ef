package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-cacheable/cache"
)

func newGetCmd(a *app) *cobra.Command {
	var pull bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the entry stored under key",
		Long:  "Print the entry stored under key. Requires the redis driver; in-process stores start empty.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.sharedFacade()
			if err != nil {
				return err
			}
			defer f.Close(cmd.Context())

			read := cache.Get[any]
			if pull {
				read = cache.Pull[any]
			}

			value, ok, err := read(cmd.Context(), f, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: not cached", args[0])
			}
			return printValue(cmd, value)
		},
	}

	cmd.Flags().BoolVar(&pull, "pull", false, "forget the entry after reading it")
	return cmd
}

func newForgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <key>...",
		Short: "Remove entries",
		Long:  "Remove entries. Requires the redis driver; in-process stores start empty.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.sharedFacade()
			if err != nil {
				return err
			}
			defer f.Close(cmd.Context())

			for _, key := range args {
				removed, err := f.Forget(cmd.Context(), key)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%t\n", key, removed)
			}
			return nil
		},
	}
}

// printValue writes value as indented JSON, or with %v when the decoded
// shape has no JSON form (cbor maps keyed by any).
func printValue(cmd *cobra.Command, value any) error {
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%v\n", value)
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
