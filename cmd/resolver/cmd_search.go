package main

import (
	"encoding/json"

	"intent-resolver/internal/domain/entity"

	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		page      pageFlags
		criteria  entity.SearchCriteria
		threshold float64
		maxResult int
		hidden    bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Rank page elements against search criteria",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd, page.timeout)
			defer cancel()

			c, err := page.container(ctx, a.conf)
			if err != nil {
				return err
			}
			defer c.Close()

			if cmd.Flags().Changed("threshold") {
				criteria.FuzzyThreshold = entity.Float(threshold)
			}
			criteria.IncludeHidden = hidden

			resp := c.Engine.Search(criteria)
			if maxResult > 0 && len(resp.Results) > maxResult {
				resp.Results = resp.Results[:maxResult]
			}
			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			a.presenter().ShowSearch(resp)
			return nil
		},
	}

	page.register(cmd)
	cmd.Flags().StringVar(&criteria.Text, "text", "", "visible text or label")
	cmd.Flags().StringVar(&criteria.TextContains, "contains", "", "substring of the text")
	cmd.Flags().StringVar(&criteria.Type, "type", "", "exact element type (button, email, select...)")
	cmd.Flags().StringVar(&criteria.Role, "role", "", "ARIA role")
	cmd.Flags().StringVar(&criteria.AccessibleName, "name", "", "accessible name")
	cmd.Flags().StringVar(&criteria.Placeholder, "placeholder", "", "placeholder text")
	cmd.Flags().StringVar(&criteria.Title, "title", "", "title attribute")
	cmd.Flags().StringVar(&criteria.IDPattern, "id", "", "id regexp")
	cmd.Flags().StringVar(&criteria.Near, "near", "", "id of an anchor element")
	cmd.Flags().StringVar(&criteria.Within, "within", "", "id of a container element")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "minimum confidence")
	cmd.Flags().IntVar(&maxResult, "max", 0, "maximum results")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "include hidden elements")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
