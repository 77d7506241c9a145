package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"intent-resolver/internal/application/port/output"
	"intent-resolver/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.PresenterPort = (*Presenter)(nil)

var (
	header  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)
	warning = color.New(color.FgYellow)
	dim     = color.New(color.Faint)
)

type Presenter struct {
	w io.Writer
}

func NewPresenter() *Presenter {
	return &Presenter{w: color.Output}
}

// NewPresenterWriter пишет в w; для тестов и перенаправления вывода.
func NewPresenterWriter(w io.Writer) *Presenter {
	if w == nil {
		w = os.Stdout
	}
	return &Presenter{w: w}
}

func (p *Presenter) ShowParsed(a *entity.ParsedAction) {
	if a == nil {
		return
	}
	header.Fprintf(p.w, "\n━━━ %s ━━━\n", a.Action)
	p.field("Target", a.TargetDescription)
	p.field("Value", a.Value)
	if len(a.Modifiers) > 0 {
		p.field("Modifiers", strings.Join(a.Modifiers, "+"))
	}
	p.field("Direction", string(a.ScrollDirection))
	p.field("Condition", a.WaitCondition)
	p.field("Assertion", string(a.AssertionType))
	p.field("Confidence", fmt.Sprintf("%.2f", a.Confidence))
}

func (p *Presenter) ShowSearch(resp entity.SearchResponse) {
	header.Fprintf(p.w, "\n━━━ %d result(s) of %d scanned (%s) ━━━\n",
		len(resp.Results), resp.ScannedCount, resp.Duration.Round(1000))

	if len(resp.Results) == 0 {
		warning.Fprintln(p.w, "No matching elements")
		return
	}
	for i, r := range resp.Results {
		marker := " "
		if i == 0 {
			marker = "★"
		}
		c := success
		if r.Confidence < 0.7 {
			c = warning
		}
		c.Fprintf(p.w, "%s %.2f ", marker, r.Confidence)
		fmt.Fprintf(p.w, "%s [%s] %s\n", r.Element.ID, r.Element.Type, truncate(r.Element.Description, 60))
		if len(r.MatchReasons) > 0 {
			dim.Fprintf(p.w, "     %s\n", strings.Join(r.MatchReasons, "; "))
		}
	}
}

func (p *Presenter) ShowResponse(resp *entity.ActionResponse) {
	if resp == nil {
		return
	}
	if resp.Success {
		success.Fprintf(p.w, "✓ %s", resp.ExecutedAction)
		if resp.ElementUsed != nil {
			fmt.Fprintf(p.w, " → %s (%.2f)", resp.ElementUsed.ID, resp.Confidence)
		}
		dim.Fprintf(p.w, "  %s  %s\n", resp.RequestID, resp.Duration.Round(1000))
		return
	}

	failure.Fprintf(p.w, "❌ %s: ", resp.ErrorCode)
	fmt.Fprintln(p.w, resp.Error)
	for _, alt := range resp.Alternatives {
		dim.Fprintf(p.w, "   alternative %s (%.2f) %s\n", alt.Element.ID, alt.Confidence, truncate(alt.Element.Description, 50))
	}
	for _, s := range resp.Suggestions {
		warning.Fprintf(p.w, "   → %s\n", s)
	}
}

func (p *Presenter) ShowRecovery(res *entity.RecoveryResult) {
	if res == nil {
		return
	}
	if res.RecoveryAttempted {
		header.Fprintf(p.w, "\n━━━ Recovery: %d attempt(s), %s ━━━\n", res.TotalAttempts, res.TotalDuration.Round(1000))
		for _, s := range res.StrategyResults {
			c := dim
			switch s.Status {
			case entity.StrategySuccess:
				c = success
			case entity.StrategyFailed:
				c = failure
			}
			c.Fprintf(p.w, "   %-18s %-8s", s.Strategy, s.Status)
			dim.Fprintf(p.w, " %s\n", s.Message)
		}
	}
	p.ShowResponse(res.Response)
}

func (p *Presenter) ShowErrorContext(ec *entity.ErrorContext) {
	if ec == nil {
		return
	}
	header.Fprintf(p.w, "\n━━━ %s ━━━\n", ec.ErrorCode)
	p.field("Instruction", ec.Instruction)
	p.field("Message", ec.Message)
	p.field("Candidates", fmt.Sprint(ec.CandidateCount))
	if nm := ec.NearestMatch; nm != nil {
		p.field("Nearest", fmt.Sprintf("%s (%.2f): %s", nm.Element.ID, nm.Confidence, nm.RejectionReason))
	}
	for _, b := range ec.Blockers {
		warning.Fprintf(p.w, "   ⚠ %s %s: %s\n", b.Kind, b.ElementID, b.Description)
	}
	for _, s := range ec.Suggestions {
		fmt.Fprintf(p.w, "   [%s %.2f] %s", s.Priority, s.Confidence, s.Action)
		if s.Command != "" {
			dim.Fprintf(p.w, "  %s", s.Command)
		}
		fmt.Fprintln(p.w)
	}
	if ec.Screenshot != nil {
		p.field("Screenshot", fmt.Sprintf("%dx%d %s, %d bytes", ec.Screenshot.Width, ec.Screenshot.Height, ec.Screenshot.Format, len(ec.Screenshot.Data)))
	}
	if ec.RetryRecommended {
		success.Fprintln(p.w, "   Retry recommended")
	}
}

func (p *Presenter) field(name, value string) {
	if value == "" {
		return
	}
	dim.Fprintf(p.w, "   %-12s", name+":")
	fmt.Fprintln(p.w, value)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
