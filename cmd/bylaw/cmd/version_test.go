package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadiqawos/toronto2.0/pkg/version"
)

func TestVersionCmd_DefaultOutput(t *testing.T) {
	cmd := newVersionCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "bylaw", "Output should contain program name")
	assert.Contains(t, out, version.Version, "Output should contain version")
	assert.Contains(t, out, "commit", "Output should contain commit info")
}

func TestVersionCmd_ShortOutput(t *testing.T) {
	cmd := newVersionCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--short"})

	err := cmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, version.Version, strings.TrimSpace(buf.String()))
}

func TestVersionCmd_JSONOutput(t *testing.T) {
	cmd := newVersionCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--json"})

	err := cmd.Execute()

	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &info), "Output should be valid JSON")
	assert.Equal(t, version.Version, info["version"])
	assert.Contains(t, info, "commit")
	assert.Contains(t, info, "date")
	assert.Contains(t, info, "go_version")
	assert.Contains(t, info, "os")
	assert.Contains(t, info, "arch")
}
