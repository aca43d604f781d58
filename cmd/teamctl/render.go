package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dimitrije/fleetdesk/internal/access"
	"github.com/dimitrije/fleetdesk/internal/models"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder())
	successStyle = bannerStyle.BorderForeground(lipgloss.Color("2")).Foreground(lipgloss.Color("2"))
	errorStyle   = bannerStyle.BorderForeground(lipgloss.Color("1")).Foreground(lipgloss.Color("1"))
	ownerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

func renderStatus(w io.Writer, status *access.Status) {
	if status == nil {
		return
	}
	style := successStyle
	if status.Kind == access.StatusError {
		style = errorStyle
	}
	fmt.Fprintln(w, style.Render(status.Text))
}

func renderFetchError(w io.Writer, snap access.Snapshot) {
	if snap.Error == "" {
		return
	}
	renderStatus(w, &access.Status{Kind: access.StatusError, Text: snap.Error})
}

func renderMembers(w io.Writer, members []models.Member) {
	if len(members) == 0 {
		fmt.Fprintln(w, "No team members.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EMAIL\tNAME\tPRIVILEGES\tVERIFIED\tADDED BY\tADDED")
	for _, m := range members {
		email := m.Email
		if m.IsOwner {
			email = ownerStyle.Render(email + " (owner)")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			email,
			m.FullName,
			formatPrivileges(m.Privileges),
			yesNo(m.Verified),
			dash(m.AddedBy),
			formatAdded(m.AddedAt),
		)
	}
	_ = tw.Flush()
}

func formatPrivileges(set models.PrivilegeSet) string {
	if len(set) == 0 {
		return "-"
	}
	return strings.Join(set.Strings(), ",")
}

func formatAdded(epoch int64) string {
	if epoch == 0 {
		return "-"
	}
	return time.Unix(epoch, 0).UTC().Format("2006-01-02")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
