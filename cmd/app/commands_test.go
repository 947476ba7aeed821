package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestGetCommands(t *testing.T) {
	var names []string
	for _, cmd := range getCommands("test") {
		names = append(names, cmd.Name)
		assert.NotEmpty(t, cmd.Usage, cmd.Name)
		assert.NotNil(t, cmd.Action, cmd.Name)
	}

	assert.ElementsMatch(t, []string{
		"server",
		"migrate",
		"verify-audit-logs",
		"create-user",
		"clean-expired-tokens",
		"revoke-sessions",
	}, names)
}

func TestFormatFlag(t *testing.T) {
	flag, ok := formatFlag().(*cli.StringFlag)
	require.True(t, ok)
	require.NotNil(t, flag.Validator)

	assert.Equal(t, "text", flag.Value)
	assert.NoError(t, flag.Validator("text"))
	assert.NoError(t, flag.Validator("json"))
	assert.EqualError(t, flag.Validator("yaml"), `unknown output format "yaml"`)
}
