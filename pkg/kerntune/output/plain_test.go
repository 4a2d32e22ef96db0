package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainFormatter_Proposals(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, sampleDocument())
	require.NoError(t, err)

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3, "header plus two proposal rows")

	assert.Contains(t, lines[0], "PARAM")
	assert.Contains(t, lines[0], "PROPOSED")
	assert.Contains(t, lines[1], "vm.swappiness")
	assert.Contains(t, lines[1], "recommended")
	assert.Contains(t, lines[2], "vm.max_map_count")

	// No ANSI styling in plain output.
	assert.NotContains(t, out, "\x1b[")
}

func TestPlainFormatter_Apply(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, &Document{
		Apply: &ApplyView{
			Results: []ApplyRow{
				{Param: "vm.swappiness", Proposed: "5", Status: "applied"},
				{Param: "vm.dirty_ratio", Proposed: "5", Status: "failed", Error: "permission denied"},
			},
			TransactionID: "tx-1",
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "applied")
	assert.Contains(t, out, "permission denied")
	assert.Contains(t, out, "tx-1")
}

func TestPlainFormatter_EmptyDocument(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, &Document{})
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}
