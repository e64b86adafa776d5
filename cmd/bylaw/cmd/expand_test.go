package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandCmd_InformalPhrase(t *testing.T) {
	testEnv(t)

	out, err := runCommand(t, "expand", "the streetcar didn't come")
	require.NoError(t, err)
	assert.Contains(t, out, "transit")
}

func TestExpandCmd_NoTriggerPrintsNothing(t *testing.T) {
	testEnv(t)

	out, err := runCommand(t, "expand", "completely unrelated text")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestExpandCmd_RequiresText(t *testing.T) {
	testEnv(t)

	_, err := runCommand(t, "expand")
	assert.Error(t, err)
}
