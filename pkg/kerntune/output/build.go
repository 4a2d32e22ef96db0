package output

import (
	"github.com/kerntune/kerntune/pkg/kerntune/engine"
	"github.com/kerntune/kerntune/pkg/kerntune/ledger"
	"github.com/kerntune/kerntune/pkg/kerntune/snapshot"
	"github.com/kerntune/kerntune/pkg/kerntune/types"
)

// BuildSystem converts a snapshot into its display summary.
func BuildSystem(snap snapshot.Snapshot) *SystemInfo {
	return &SystemInfo{
		Disk:     string(snap.Disk),
		Memory:   snap.MemHuman(),
		Chassis:  string(snap.Chassis),
		Governor: snap.Governor,
		Kernel:   snap.Kernel,
	}
}

// BuildProposals converts a proposal list into display rows.
func BuildProposals(proposals []types.Proposal) []ProposalRow {
	rows := make([]ProposalRow, len(proposals))
	for i, p := range proposals {
		rows[i] = ProposalRow{
			Param:    p.Param,
			Current:  p.Current,
			Proposed: p.Proposed,
			Reason:   p.Reason,
			Category: string(p.Category),
			Priority: string(p.Priority),
			Command:  p.Command,
		}
	}
	return rows
}

// BuildApply converts an engine report into its display view.
func BuildApply(report *engine.Report) *ApplyView {
	results := make([]ApplyRow, len(report.Results))
	for i, res := range report.Results {
		results[i] = ApplyRow{
			Param:    res.Proposal.Param,
			Proposed: res.Proposal.Proposed,
			Status:   string(res.Status),
			Error:    res.Error,
		}
	}

	applied, failed, rejected, skipped := report.Counts()
	return &ApplyView{
		Results:       results,
		TransactionID: report.TransactionID(),
		Applied:       applied,
		Failed:        failed,
		Rejected:      rejected,
		Skipped:       skipped,
	}
}

// BuildUndo converts a ledger undo report into its display view.
func BuildUndo(report *ledger.UndoReport) *UndoView {
	restored := make([]ChangeRow, len(report.Restored))
	for i, c := range report.Restored {
		restored[i] = ChangeRow{Param: c.Param, Old: c.Old, New: c.New}
	}

	var skipped []ChangeRow
	for _, c := range report.Skipped {
		skipped = append(skipped, ChangeRow{Param: c.Param, Old: c.Old, New: c.New})
	}

	var failed []ApplyRow
	for _, f := range report.Failed {
		failed = append(failed, ApplyRow{Param: f.Param, Status: "failed", Error: f.Error})
	}

	return &UndoView{
		TransactionID: report.TransactionID,
		Description:   report.Description,
		Restored:      restored,
		Skipped:       skipped,
		Failed:        failed,
		Reverted:      report.Reverted,
	}
}

// BuildReset converts a ledger reset report into its display view.
func BuildReset(report *ledger.ResetReport) *ResetView {
	outcomes := make([]OutcomeRow, len(report.Outcomes))
	for i, o := range report.Outcomes {
		outcomes[i] = OutcomeRow{
			TransactionID: o.TransactionID,
			Status:        o.Status,
			Error:         o.Error,
		}
	}
	return &ResetView{
		Outcomes:         outcomes,
		ArtifactsRemoved: report.ArtifactsRemoved,
		Reloaded:         report.Reloaded,
	}
}

// BuildHistory converts ledger transactions into display rows.
func BuildHistory(transactions []types.Transaction) []HistoryRow {
	rows := make([]HistoryRow, len(transactions))
	for i, tx := range transactions {
		rows[i] = HistoryRow{
			ID:          tx.ID,
			Timestamp:   tx.Timestamp,
			Description: tx.Description,
			Changes:     len(tx.Changes),
			Reverted:    tx.Reverted,
		}
	}
	return rows
}
