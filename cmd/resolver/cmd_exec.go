package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"intent-resolver/internal/domain/entity"

	"github.com/spf13/cobra"
)

var errInstructionFailed = errors.New("instruction failed")

func newExecCmd(a *app) *cobra.Command {
	var (
		page         pageFlags
		near         string
		threshold    float64
		alternatives int
		withRecovery bool
		sequence     bool
		errorContext bool
		screenshot   string
		showMetrics  bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "exec <instruction>",
		Short: "Resolve an instruction on a page and perform it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd, page.timeout)
			defer cancel()

			c, err := page.container(ctx, a.conf)
			if err != nil {
				return err
			}
			defer c.Close()

			req := entity.NLActionRequest{
				Instruction:     strings.Join(args, " "),
				Context:         near,
				MaxAlternatives: alternatives,
			}
			if cmd.Flags().Changed("threshold") {
				req.ConfidenceThreshold = entity.Float(threshold)
			}

			p := a.presenter()
			var responses []*entity.ActionResponse
			var recovery *entity.RecoveryResult

			switch {
			case sequence:
				responses = c.Executor.ExecuteSequence(ctx, req.Instruction, req)
			case withRecovery:
				recovery = c.Executor.ExecuteWithRecovery(ctx, req, c.Config.Recovery)
				responses = []*entity.ActionResponse{recovery.Response}
			default:
				responses = []*entity.ActionResponse{c.Executor.Execute(ctx, req)}
			}

			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				var v any = responses
				if recovery != nil {
					v = recovery
				}
				if err := enc.Encode(v); err != nil {
					return err
				}
			} else if recovery != nil {
				p.ShowRecovery(recovery)
			} else {
				for _, resp := range responses {
					p.ShowResponse(resp)
				}
			}

			last := responses[len(responses)-1]
			if last == nil || last.Success {
				return printMetrics(a, c.Metrics.Summary, showMetrics)
			}

			if errorContext || screenshot != "" {
				ec := c.Executor.GetErrorContext(ctx, req.Instruction, last)
				p.ShowErrorContext(ec)
				if screenshot != "" && ec.Screenshot != nil {
					if err := os.WriteFile(screenshot, ec.Screenshot.Data, 0o644); err != nil {
						return fmt.Errorf("failed to save screenshot: %w", err)
					}
				}
			}
			if err := printMetrics(a, c.Metrics.Summary, showMetrics); err != nil {
				return err
			}
			return fmt.Errorf("%w: %s", errInstructionFailed, last.ErrorCode)
		},
	}

	page.register(cmd)
	cmd.Flags().StringVar(&near, "near", "", "prefer elements near this element id")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "confidence required to act")
	cmd.Flags().IntVar(&alternatives, "alternatives", 0, "alternatives to report on failure")
	cmd.Flags().BoolVar(&withRecovery, "recover", false, "retry with recovery strategies on failure")
	cmd.Flags().BoolVar(&sequence, "sequence", false, "split and run a compound instruction")
	cmd.Flags().BoolVar(&errorContext, "error-context", false, "print diagnostics on failure")
	cmd.Flags().StringVar(&screenshot, "screenshot", "", "save a failure screenshot to this file (browser only)")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print collected metrics")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.MarkFlagsMutuallyExclusive("recover", "sequence")
	return cmd
}

func printMetrics(a *app, summary func() (map[string]float64, error), enabled bool) error {
	if !enabled {
		return nil
	}
	values, err := summary()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(a.out, "%s %g\n", k, values[k])
	}
	return nil
}

func withTimeout(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
