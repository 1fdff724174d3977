package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/fission-dev/fission/internal/model"
	"gopkg.in/yaml.v3"
)

func TestReportCmd_IncompleteSession(t *testing.T) {
	seedFixtureSession(t)

	cmd, out := newTestRoot(newReportCmd())
	cmd.SetArgs([]string{"report"})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "session incomplete")
	assert.Contains(t, strings.ToLower(out.String()), "score")
}

func TestReportCmd_AfterRun(t *testing.T) {
	seedFixtureSession(t)
	useTestCommand(t, "./check.sh {output}")
	captureUI(t)

	run, _ := newTestRoot(newRunCmd())
	run.SetArgs([]string{"run"})
	require.NoError(t, run.Execute())

	cmd, out := newTestRoot(newReportCmd())
	cmd.SetArgs([]string{"report"})
	require.NoError(t, cmd.Execute())

	assert.NotContains(t, out.String(), "session incomplete")
	assert.Contains(t, out.String(), "killed")
	assert.Contains(t, out.String(), "80.0%")
}

func TestReportCmd_YAMLDump(t *testing.T) {
	seedFixtureSession(t)

	cmd, out := newTestRoot(newReportCmd())
	cmd.SetArgs([]string{"report", "--yaml"})
	require.NoError(t, cmd.Execute())

	var reports []m.Report
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &reports))
	assert.Len(t, reports, 5)

	for _, report := range reports {
		assert.NotEmpty(t, report.JobID)
		assert.NotEmpty(t, report.Mutations)
	}
}

func TestReportCmd_NoSessionFailsCleanly(t *testing.T) {
	chdirProject(t, fixtureFiles())

	cmd, out := newTestRoot(newReportCmd())
	cmd.SetArgs([]string{"report"})

	// An output dir with no seeded items reads back as an empty session.
	require.NoError(t, cmd.Execute())
	assert.Contains(t, strings.ToLower(out.String()), "score")
}
