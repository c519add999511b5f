package status

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pocketcode/pocket-cli/internal/domain"
)

// Report bundles everything the status view shows: connection state plus the
// latest session and project snapshots, which may be nil.
type Report struct {
	State   domain.ConnectionState
	Session *domain.SessionInfo
	Project *domain.ProjectDetails
	Healthy bool
}

type RenderOptions struct {
	Now time.Time
}

func renderView(report Report, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Pocket Companion"),
		s.header.Render(fmt.Sprintf("target: %s:%d", report.State.Host, report.State.Port)),
		connectionLine(report, s),
	}

	if report.State.LastError != "" {
		lines = append(lines, s.warning.Render("last error: "+report.State.LastError))
	}

	lines = append(lines, s.section.Render(sessionSection(report, opts, s)))
	lines = append(lines, s.section.Render(projectSection(report, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func connectionLine(report Report, s styles) string {
	health := "unreachable"
	if report.Healthy {
		health = "healthy"
	}

	switch report.State.Status {
	case domain.StatusConnected:
		return s.connected.Render("● connected") + s.meta.Render(fmt.Sprintf("  service %s", health))
	case domain.StatusConnecting:
		return s.detail.Render(fmt.Sprintf("◌ connecting (attempt %d)", report.State.Attempts))
	default:
		line := s.disconnected.Render("○ disconnected") + s.meta.Render(fmt.Sprintf("  service %s", health))
		if report.State.Attempts > 0 {
			line += s.meta.Render(fmt.Sprintf(", %d attempts", report.State.Attempts))
		}
		return line
	}
}

func sessionSection(report Report, opts RenderOptions, s styles) string {
	if report.Session == nil {
		return s.empty.Render("No active session.")
	}

	session := report.Session
	parts := []string{
		s.key.Render("session: ") + s.detail.Render(session.ID),
		s.key.Render("device:  ") + s.detail.Render(fmt.Sprintf("%s (%s)", session.DeviceName, session.Platform)),
	}
	if !session.LastActivity.IsZero() {
		parts = append(parts, s.key.Render("active:  ")+s.meta.Render(relativeTime(session.LastActivity, opts.Now)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func projectSection(report Report, s styles) string {
	if report.Project == nil {
		return s.empty.Render("No project open.")
	}

	project := report.Project
	parts := []string{
		s.key.Render("project: ") + s.detail.Render(project.Name),
		s.key.Render("path:    ") + s.meta.Render(project.Path),
	}
	if project.Language != "" {
		parts = append(parts, s.key.Render("lang:    ")+s.meta.Render(project.Language))
	}
	if project.IsGitRepo {
		parts = append(parts, s.key.Render("git:     ")+s.meta.Render("yes"))
	}
	if len(project.Files) > 0 {
		parts = append(parts, s.key.Render("files:   ")+s.meta.Render(fmt.Sprintf("%d", len(project.Files))))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func relativeTime(value, now time.Time) string {
	if now.IsZero() {
		now = time.Now()
	}

	elapsed := now.Sub(value)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	default:
		return value.Format("2006-01-02 15:04")
	}
}
