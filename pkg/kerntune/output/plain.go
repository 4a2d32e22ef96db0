package output

import (
	"bytes"
	"fmt"
	"strconv"
	"text/tabwriter"
)

// PlainFormatter formats output as a simple tab-separated table.
// It produces plain text output suitable for scripting and piping.
// No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, d *Document) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if len(d.Proposals) > 0 {
		if _, err := tw.Write([]byte("PARAM\tCURRENT\tPROPOSED\tPRIORITY\tCATEGORY\tREASON\n")); err != nil {
			return err
		}
		for _, row := range d.Proposals {
			line := row.Param + "\t" + displayValue(row.Current) + "\t" + row.Proposed +
				"\t" + row.Priority + "\t" + row.Category + "\t" + row.Reason + "\n"
			if _, err := tw.Write([]byte(line)); err != nil {
				return err
			}
		}
	}

	if d.Apply != nil {
		if _, err := tw.Write([]byte("PARAM\tPROPOSED\tSTATUS\tERROR\n")); err != nil {
			return err
		}
		for _, row := range d.Apply.Results {
			line := row.Param + "\t" + row.Proposed + "\t" + row.Status + "\t" + row.Error + "\n"
			if _, err := tw.Write([]byte(line)); err != nil {
				return err
			}
		}
		if d.Apply.TransactionID != "" {
			fmt.Fprintf(tw, "transaction\t%s\n", d.Apply.TransactionID)
		}
	}

	if d.Undo != nil {
		for _, c := range d.Undo.Restored {
			fmt.Fprintf(tw, "restored\t%s\t%s\n", c.Param, c.Old)
		}
		for _, c := range d.Undo.Skipped {
			fmt.Fprintf(tw, "skipped\t%s\t%s\n", c.Param, "command change")
		}
		for _, row := range d.Undo.Failed {
			fmt.Fprintf(tw, "failed\t%s\t%s\n", row.Param, row.Error)
		}
	}

	if d.Reset != nil {
		for _, o := range d.Reset.Outcomes {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", o.TransactionID, o.Status, o.Error)
		}
	}

	if d.History != nil {
		if _, err := tw.Write([]byte("ID\tTIMESTAMP\tCHANGES\tREVERTED\tDESCRIPTION\n")); err != nil {
			return err
		}
		for _, row := range d.History {
			line := row.ID + "\t" + row.Timestamp.Format("2006-01-02T15:04:05Z07:00") +
				"\t" + strconv.Itoa(row.Changes) + "\t" + strconv.FormatBool(row.Reverted) +
				"\t" + row.Description + "\n"
			if _, err := tw.Write([]byte(line)); err != nil {
				return err
			}
		}
	}

	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
