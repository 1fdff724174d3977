package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerCmd_DefaultListenAddr(t *testing.T) {
	cmd := newWorkerCmd()

	flag := cmd.Flags().Lookup(listenFlagName)
	require.NotNil(t, flag)
	assert.Equal(t, defaultListenAddr, flag.DefValue)
}

func TestWorkerCmd_MalformedTemplateFailsBeforeListening(t *testing.T) {
	chdirProject(t, fixtureFiles())
	useTestCommand(t, "./check.sh")

	cmd, _ := newTestRoot(newWorkerCmd())
	cmd.SetArgs([]string{"worker"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{output}")
}

func TestWorkerCmd_FailsOutsideModule(t *testing.T) {
	chdirProject(t, map[string]string{"main.go": "package main\n"})
	useTestCommand(t, "./check.sh {output}")

	cmd, _ := newTestRoot(newWorkerCmd())
	cmd.SetArgs([]string{"worker"})

	require.Error(t, cmd.Execute())
}
