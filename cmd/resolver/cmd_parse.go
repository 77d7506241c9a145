package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"intent-resolver/internal/domain/entity"
	"intent-resolver/internal/usecase/nlparse"

	"github.com/spf13/cobra"
)

func newParseCmd(a *app) *cobra.Command {
	var (
		strict   bool
		asJSON   bool
		compound bool
	)

	cmd := &cobra.Command{
		Use:   "parse <instruction>",
		Short: "Parse an instruction without touching a page",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instruction := strings.Join(args, " ")
			parts := []string{instruction}
			if compound {
				parts = nlparse.SplitCompoundInstruction(instruction)
			}

			parser := nlparse.New()
			var parsed []*entity.ParsedAction
			for _, part := range parts {
				var (
					action *entity.ParsedAction
					err    error
				)
				if strict {
					action, err = parser.ParseStrict(part)
				} else {
					action, err = parser.Parse(part)
				}
				if err != nil {
					return fmt.Errorf("%q: %w", part, err)
				}
				if err := nlparse.ValidateParsedAction(action); err != nil {
					return fmt.Errorf("%q: %w", part, err)
				}
				parsed = append(parsed, action)
			}

			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(parsed)
			}
			p := a.presenter()
			for _, action := range parsed {
				p.ShowParsed(action)
				fmt.Fprintf(a.out, "   %s\n", nlparse.DescribeAction(action))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "disable the keyword fallback")
	cmd.Flags().BoolVar(&compound, "compound", false, "split compound instructions (and, then, commas, semicolons)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
