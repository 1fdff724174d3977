package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaselineCmd_PassingSuite(t *testing.T) {
	chdirProject(t, fixtureFiles())
	useTestCommand(t, "./check.sh {output}")

	cmd, out := newTestRoot(newBaselineCmd())
	cmd.SetArgs([]string{"baseline"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "baseline passed")
}

func TestBaselineCmd_FailingSuite(t *testing.T) {
	files := fixtureFiles()
	files["check.sh"] = "#!/bin/sh\necho 'suite is red'\nexit 1\n"
	chdirProject(t, files)
	useTestCommand(t, "./check.sh {output}")

	cmd, out := newTestRoot(newBaselineCmd())
	cmd.SetArgs([]string{"baseline"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baseline failed")
	assert.Contains(t, out.String(), "suite is red")
}

func TestBaselineCmd_MalformedTemplate(t *testing.T) {
	chdirProject(t, fixtureFiles())
	useTestCommand(t, "./check.sh {shard}")

	cmd, _ := newTestRoot(newBaselineCmd())
	cmd.SetArgs([]string{"baseline"})

	require.Error(t, cmd.Execute())
}
