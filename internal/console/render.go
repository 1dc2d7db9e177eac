package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"workshop-backend/internal/appointments"
	"workshop-backend/internal/bsonx"
	"workshop-backend/internal/mechanics"
	"workshop-backend/internal/models"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	degradedStyle = lipgloss.NewStyle().Faint(true)
	summaryStyle  = lipgloss.NewStyle().Bold(true)

	statusColors = map[string]lipgloss.Color{
		models.AppointmentStatusConfirmed:  lipgloss.Color("4"),
		models.AppointmentStatusInProgress: lipgloss.Color("3"),
		models.AppointmentStatusCompleted:  lipgloss.Color("2"),
		models.AppointmentStatusCancelled:  lipgloss.Color("1"),
	}
)

type column struct {
	title string
	width int
}

var appointmentColumns = []column{
	{"ID", 24},
	{"CLIENT", 20},
	{"PHONE", 14},
	{"LICENSE", 10},
	{"DATE", 12},
	{"MECHANIC", 16},
	{"STATUS", 12},
}

// RenderAppointments writes one row per appointment and a summary line.
func RenderAppointments(w io.Writer, list ListResponse) {
	if len(list.Appointments) == 0 {
		fmt.Fprintln(w, "No appointments found.")
		return
	}

	titles := make([]string, len(appointmentColumns))
	for i, c := range appointmentColumns {
		titles[i] = c.title
	}
	fmt.Fprintln(w, renderRow(titles, headerStyle))

	active := 0
	for _, a := range list.Appointments {
		if models.IsActiveStatus(a.Status) {
			active++
		}
		style := lipgloss.NewStyle()
		if a.Degraded {
			style = degradedStyle
		}
		cells := []string{
			a.ID,
			a.ClientName,
			a.ClientPhone,
			a.CarLicense,
			displayDate(a.AppointmentDate),
			a.MechanicName,
			statusBadge(a.Status),
		}
		fmt.Fprintln(w, renderRow(cells, style))
	}

	summary := fmt.Sprintf("%d appointments, %d active", len(list.Appointments), active)
	if list.Degraded > 0 {
		summary += fmt.Sprintf(", %d with missing data", list.Degraded)
	}
	fmt.Fprintln(w, summaryStyle.Render(summary))
}

func RenderMechanics(w io.Writer, items []mechanics.View) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No mechanics found.")
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-24s  %-16s  %-22s  %s", "ID", "NAME", "SPECIALTY", "AVAILABLE")))
	for _, m := range items {
		available := "yes"
		if !m.Available {
			available = "no"
		}
		fmt.Fprintf(w, "%-24s  %-16s  %-22s  %s\n", m.ID, truncate(m.Name, 16), truncate(m.Specialty, 22), available)
	}
}

func RenderStats(w io.Writer, stats appointments.Stats) {
	fmt.Fprintln(w, summaryStyle.Render(fmt.Sprintf("%d appointments, %d active", stats.Total, stats.Active)))
	for _, status := range models.AppointmentStatuses {
		fmt.Fprintf(w, "  %s %d\n", statusBadge(status), stats.ByStatus[status])
	}
}

func renderRow(cells []string, style lipgloss.Style) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		width := appointmentColumns[i].width
		parts[i] = lipgloss.NewStyle().Width(width).MaxWidth(width).Render(truncate(cell, width))
	}
	return style.Render(strings.Join(parts, "  "))
}

func statusBadge(status string) string {
	label := strings.ToUpper(status)
	if color, ok := statusColors[status]; ok {
		return lipgloss.NewStyle().Foreground(color).Bold(true).Render(label)
	}
	return label
}

// displayDate shortens a listing timestamp to its calendar day.
func displayDate(value string) string {
	t, err := time.Parse(bsonx.TimeLayout, value)
	if err != nil {
		if value == "" {
			return "Invalid Date"
		}
		return value
	}
	return t.Format("Jan 2, 2006")
}

func truncate(text string, max int) string {
	if lipgloss.Width(text) <= max {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > max {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
