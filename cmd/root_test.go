package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandWiring(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["render"])
	assert.True(t, names["inspect"])
	assert.True(t, names["serve"])
}

func TestRenderFlags(t *testing.T) {
	flag := renderCmd.Flags().Lookup("out")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestServeFlags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}
