package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"redditdl/internal/imgur"
	"redditdl/internal/media"
)

var (
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(0, 1)
)

// RenderContent lists extracted content, one item per line.
func RenderContent(w io.Writer, items []media.Content) {
	for _, c := range items {
		marker := okStyle.Render("+")
		if c.DisplayOnly {
			marker = accentStyle.Render("~")
		}
		fmt.Fprintf(w, "%s %s  %s\n", marker, titleStyle.Render(c.FileName()), dimStyle.Render(c.URL))
		fmt.Fprintf(w, "    %s\n", dimStyle.Render(fmt.Sprintf("u/%s  r/%s  %s", c.User, c.Subreddit, c.PostTitle)))
	}
}

// RenderFailures prints each failure message in a bordered block.
func RenderFailures(w io.Writer, failures []string) {
	for _, f := range failures {
		fmt.Fprintln(w, failBoxStyle.Render(strings.TrimSpace(f)))
	}
}

// Summary counts shown after a batch.
type Summary struct {
	Content     int
	Saved       int
	Skipped     int
	Failures    int
	Retry       int
	Unsupported int
}

// RenderSummary prints the batch totals on one line.
func RenderSummary(w io.Writer, s Summary) {
	parts := []string{okStyle.Render(fmt.Sprintf("%d extracted", s.Content))}
	if s.Saved > 0 || s.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d saved", s.Saved), dimStyle.Render(fmt.Sprintf("%d skipped", s.Skipped)))
	}
	if s.Failures > 0 {
		parts = append(parts, failStyle.Render(fmt.Sprintf("%d failed", s.Failures)))
	}
	if s.Retry > 0 {
		parts = append(parts, warnStyle.Render(fmt.Sprintf("%d saved for retry", s.Retry)))
	}
	if s.Unsupported > 0 {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("%d unsupported", s.Unsupported)))
	}
	fmt.Fprintln(w, strings.Join(parts, ", "))
}

// RenderCredits prints the Imgur credit counters.
func RenderCredits(w io.Writer, c *imgur.Credits) {
	fmt.Fprintf(w, "%s %d / %d\n", titleStyle.Render("Client credits:"), c.ClientRemaining, c.ClientLimit)
	fmt.Fprintf(w, "%s %d / %d (resets %s)\n", titleStyle.Render("User credits:  "),
		c.UserRemaining, c.UserLimit, c.ResetTime().Local().Format("15:04"))
}
