package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantkyc/kycdesk/internal/submissions"
)

const sampleJSON = `[
  {"id": "1", "formId": "f", "submittedAt": "2024-02-29T12:00:00Z", "status": "pending",
   "data": {"fullName": "Zoe", "address": "1 Main St"}},
  {"id": "2", "formId": "f", "submittedAt": "2024-02-20T12:00:00Z", "status": "approved",
   "data": {"fullName": "Anna", "address": "2 Oak Ave"}},
  {"id": "3", "formId": "f", "submittedAt": "2023-06-01T12:00:00Z", "status": "rejected",
   "data": {"fullName": "Old", "address": "3 Pine Rd"}}
]`

func testProcessor() *submissions.Processor {
	return submissions.NewProcessor(submissions.WithClock(func() time.Time {
		return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	}))
}

func TestRunExport_Stdout(t *testing.T) {
	var out bytes.Buffer
	err := runExport(testProcessor(), exportOptions{in: "-", out: "-", date: "30days", sort: "name", order: "asc"},
		strings.NewReader(sampleJSON), &out)
	require.NoError(t, err)

	lines := strings.Split(out.String(), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], `"2",`))
	assert.True(t, strings.HasPrefix(lines[2], `"1",`))
}

func TestRunExport_SelectedToFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "subs.json")
	require.NoError(t, os.WriteFile(in, []byte(sampleJSON), 0o600))
	target := filepath.Join(dir, "report.csv")

	var out bytes.Buffer
	err := runExport(testProcessor(), exportOptions{in: in, out: target, ids: []string{"3"}}, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "wrote 1 submission(s) to "+target+"\n", out.String())

	body, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"3","6/1/2023, 12:00:00 PM","rejected","Old"`)
}

func TestRunExport_BadInput(t *testing.T) {
	err := runExport(testProcessor(), exportOptions{in: "-", out: "-"}, strings.NewReader("{"), &bytes.Buffer{})
	assert.Error(t, err)
}
