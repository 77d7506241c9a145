package main

import (
	"fmt"
	"os"

	"intent-resolver/internal/infrastructure/browser/htmldoc"

	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		page    pageFlags
		cleaned bool
		maxSize int
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List the elements the resolver sees on a page",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cleaned {
				if page.html == "" {
					return fmt.Errorf("--cleaned needs --html")
				}
				raw, err := os.ReadFile(page.html)
				if err != nil {
					return err
				}
				cfg := htmldoc.DefaultCleanConfig
				cfg.MaxOutputSize = maxSize
				out, err := htmldoc.CleanHTML(string(raw), &cfg)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, out)
				return nil
			}

			ctx, cancel := withTimeout(cmd, page.timeout)
			defer cancel()

			c, err := page.container(ctx, a.conf)
			if err != nil {
				return err
			}
			defer c.Close()

			for _, el := range c.Engine.Elements() {
				state := "visible"
				if !el.State.Visible {
					state = "hidden"
				}
				if !el.State.Enabled {
					state += ",disabled"
				}
				fmt.Fprintf(a.out, "%-16s %-10s %-16s %s\n", el.ID, el.Type, state, el.Description)
			}
			return nil
		},
	}

	page.register(cmd)
	cmd.Flags().BoolVar(&cleaned, "cleaned", false, "print the cleaned HTML instead of elements")
	cmd.Flags().IntVar(&maxSize, "max-size", htmldoc.DefaultCleanConfig.MaxOutputSize, "truncate cleaned HTML")
	return cmd
}
