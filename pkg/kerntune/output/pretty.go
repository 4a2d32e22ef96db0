package output

import (
	"bytes"
	"fmt"
	"strings"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, d *Document) error {
	if d.System != nil {
		w.WriteString(f.formatHeader(d))
		w.WriteString("\n")
	}

	if len(d.Proposals) > 0 {
		w.WriteString(f.formatProposals(d.Proposals))
	} else if d.Apply == nil && d.Undo == nil && d.Reset == nil && d.History == nil {
		w.WriteString(MutedStyle.Render("  System already tuned, nothing to propose"))
		w.WriteString("\n")
	}

	if d.Apply != nil {
		w.WriteString(f.formatApply(d.Apply))
	}

	if d.Undo != nil {
		w.WriteString(f.formatUndo(d.Undo))
	}

	if d.Reset != nil {
		w.WriteString(f.formatReset(d.Reset))
	}

	if d.History != nil {
		w.WriteString(f.formatHistory(d.History))
	}

	return nil
}

// formatHeader builds the header box with system metadata.
func (f *PrettyFormatter) formatHeader(d *Document) string {
	var parts []string

	if d.Persona != "" {
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Persona:"), ValueStyle.Render(d.Persona)))
	}
	parts = append(parts, fmt.Sprintf("%s %s",
		LabelStyle.Render("Disk:"), ValueStyle.Render(d.System.Disk)))
	parts = append(parts, fmt.Sprintf("%s %s",
		LabelStyle.Render("Memory:"), ValueStyle.Render(d.System.Memory)))
	parts = append(parts, fmt.Sprintf("%s %s",
		LabelStyle.Render("Chassis:"), ValueStyle.Render(d.System.Chassis)))

	lines := []string{strings.Join(parts, "  ")}

	if d.System.Kernel != "" || d.System.Governor != "" {
		var info []string
		if d.System.Kernel != "" {
			info = append(info, fmt.Sprintf("%s %s",
				LabelStyle.Render("Kernel:"), MutedStyle.Render(d.System.Kernel)))
		}
		if d.System.Governor != "" {
			info = append(info, fmt.Sprintf("%s %s",
				LabelStyle.Render("Governor:"), MutedStyle.Render(d.System.Governor)))
		}
		lines = append(lines, strings.Join(info, "  "))
	}

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

// formatProposals builds the proposal list grouped by category.
func (f *PrettyFormatter) formatProposals(rows []ProposalRow) string {
	var sb strings.Builder

	category := ""
	for _, row := range rows {
		if row.Category != category {
			category = row.Category
			sb.WriteString(TitleStyle.Render(strings.ToUpper(category)))
			sb.WriteString("\n")
		}

		badge := f.priorityBadge(row.Priority)
		sb.WriteString(fmt.Sprintf("  %s %s  %s\n",
			badge,
			ParamStyle.Render(row.Param),
			MutedStyle.Render(fmt.Sprintf("%s -> %s", displayValue(row.Current), row.Proposed))))
		sb.WriteString(fmt.Sprintf("      %s\n", MutedStyle.Render(row.Reason)))
		if row.Command != "" {
			sb.WriteString(fmt.Sprintf("      %s %s\n",
				LabelStyle.Render("runs:"), ValueStyle.Render(row.Command)))
		}
	}

	counts := fmt.Sprintf("%s %s", LabelStyle.Render("Proposals:"),
		ValueStyle.Render(fmt.Sprintf("%d", len(rows))))
	sb.WriteString(FooterBox.Render(counts))
	sb.WriteString("\n")

	return sb.String()
}

// formatApply builds the per-proposal apply outcome list and summary.
func (f *PrettyFormatter) formatApply(v *ApplyView) string {
	var sb strings.Builder

	for _, row := range v.Results {
		status := f.statusBadge(row.Status)
		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			status,
			ParamStyle.Render(row.Param),
			MutedStyle.Render("-> "+row.Proposed)))
		if row.Error != "" {
			sb.WriteString(fmt.Sprintf("      %s\n", ErrorStyle.Render(row.Error)))
		}
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%s %s",
		LabelStyle.Render("Applied:"), SuccessStyle.Render(fmt.Sprintf("%d", v.Applied))))
	if v.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Failed:"), ErrorStyle.Render(fmt.Sprintf("%d", v.Failed))))
	}
	if v.Rejected > 0 {
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Rejected:"), ErrorStyle.Render(fmt.Sprintf("%d", v.Rejected))))
	}
	if v.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Skipped:"), WarningStyle.Render(fmt.Sprintf("%d", v.Skipped))))
	}
	if v.TransactionID != "" {
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Transaction:"), MutedStyle.Render(v.TransactionID)))
	}

	sb.WriteString(FooterBox.Render(strings.Join(parts, "  ")))
	sb.WriteString("\n")

	return sb.String()
}

// formatUndo builds the undo report.
func (f *PrettyFormatter) formatUndo(v *UndoView) string {
	var sb strings.Builder

	sb.WriteString(TitleStyle.Render("Undo " + v.TransactionID))
	sb.WriteString("\n")
	if v.Description != "" {
		sb.WriteString(fmt.Sprintf("  %s\n", MutedStyle.Render(v.Description)))
	}

	for _, c := range v.Restored {
		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			SuccessStyle.Render("restored"),
			ParamStyle.Render(c.Param),
			MutedStyle.Render(fmt.Sprintf("%s -> %s", c.New, c.Old))))
	}
	for _, c := range v.Skipped {
		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			WarningStyle.Render("skipped"),
			ParamStyle.Render(c.Param),
			MutedStyle.Render("command change, not restorable")))
	}
	for _, row := range v.Failed {
		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			ErrorStyle.Render("failed"),
			ParamStyle.Render(row.Param),
			ErrorStyle.Render(row.Error)))
	}

	var status string
	if v.Reverted {
		status = SuccessStyle.Render("Transaction fully reverted")
	} else {
		status = WarningStyle.Render("Transaction partially reverted, will retry on next undo")
	}
	sb.WriteString(FooterBox.Render(status))
	sb.WriteString("\n")

	return sb.String()
}

// formatReset builds the reset report.
func (f *PrettyFormatter) formatReset(v *ResetView) string {
	var sb strings.Builder

	if len(v.Outcomes) == 0 {
		sb.WriteString(MutedStyle.Render("  No transactions to revert"))
		sb.WriteString("\n")
	}
	for _, o := range v.Outcomes {
		sb.WriteString(fmt.Sprintf("  %s %s", f.statusBadge(o.Status),
			ParamStyle.Render(o.TransactionID)))
		if o.Error != "" {
			sb.WriteString("  " + ErrorStyle.Render(o.Error))
		}
		sb.WriteString("\n")
	}

	var parts []string
	if v.ArtifactsRemoved {
		parts = append(parts, SuccessStyle.Render("persisted config removed"))
	}
	if v.Reloaded {
		parts = append(parts, SuccessStyle.Render("sysctl reloaded"))
	}
	if len(parts) > 0 {
		sb.WriteString(FooterBox.Render(strings.Join(parts, "  ")))
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatHistory builds the transaction history table.
func (f *PrettyFormatter) formatHistory(rows []HistoryRow) string {
	var sb strings.Builder

	if len(rows) == 0 {
		sb.WriteString(MutedStyle.Render("  No transactions recorded"))
		sb.WriteString("\n")
		return sb.String()
	}

	for _, row := range rows {
		state := SuccessStyle.Render("applied")
		if row.Reverted {
			state = MutedStyle.Render("reverted")
		}
		sb.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
			MutedStyle.Render(row.Timestamp.Local().Format("2006-01-02 15:04")),
			ParamStyle.Render(row.ID),
			state,
			ValueStyle.Render(fmt.Sprintf("%d changes, %s", row.Changes, row.Description))))
	}

	return sb.String()
}

// priorityBadge returns a styled priority marker.
func (f *PrettyFormatter) priorityBadge(priority string) string {
	switch priority {
	case "critical":
		return ErrorStyle.Render("[critical]   ")
	case "recommended":
		return WarningStyle.Render("[recommended]")
	default:
		return MutedStyle.Render("[optional]   ")
	}
}

// statusBadge returns a styled apply status marker.
func (f *PrettyFormatter) statusBadge(status string) string {
	switch status {
	case "applied", "reverted":
		return SuccessStyle.Render(status)
	case "failed", "rejected":
		return ErrorStyle.Render(status)
	case "skipped", "partial":
		return WarningStyle.Render(status)
	default:
		return MutedStyle.Render(status)
	}
}

// displayValue substitutes a placeholder for empty current values.
func displayValue(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}
