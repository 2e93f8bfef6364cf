package telegram

import (
	"fmt"
	"strings"
	"time"

	"inactivity_notifier/internal/app"
)

const timeLayout = "2006-01-02 15:04 MST"

func formatReport(title string, r app.CycleReport) string {
	var b strings.Builder
	b.WriteString(title + "\n\n")
	fmt.Fprintf(&b, "Students scanned: %d\n", r.UsersScanned)
	fmt.Fprintf(&b, "Reminders sent: %d\n", r.NotificationsSent)
	fmt.Fprintf(&b, "Failed: %d\n", r.NotificationsFailed)
	fmt.Fprintf(&b, "Skipped: %d\n", r.NotificationsSkipped)
	fmt.Fprintf(&b, "Not due: %d\n", r.UsersNotDue)
	if !r.StartedAt.IsZero() && !r.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "Duration: %s\n", r.Duration().Round(time.Millisecond))
	}
	if r.Cancelled {
		b.WriteString("\nCycle was cancelled before all students were processed.\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatStatus(st app.CycleStatus, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("Inactivity reminders status\n\n")
	if st.Running {
		b.WriteString("A check is running right now.\n")
	}
	if st.NextRun.IsZero() {
		b.WriteString("Next scheduled run: not scheduled\n")
	} else {
		fmt.Fprintf(&b, "Next scheduled run: %s\n", st.NextRun.In(loc).Format(timeLayout))
	}

	if st.LastReport == nil {
		b.WriteString("No check has run since startup.")
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(formatReport(fmt.Sprintf("Last run (%s, %s):", st.LastTrigger, st.LastReport.FinishedAt.In(loc).Format(timeLayout)), *st.LastReport))
	if st.LastError != "" {
		fmt.Fprintf(&b, "\nError: %s", st.LastError)
	}
	return b.String()
}
