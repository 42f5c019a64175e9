package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"migrate"},
		{"ensure-admin"},
		{"users", "list"},
		{"users", "create"},
		{"users", "delete"},
		{"sitemap", "stats"},
		{"sitemap", "flush"},
		{"slug"},
	} {
		cmd, rest, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Empty(t, rest)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestUsersCreateRequiresFlags(t *testing.T) {
	for _, name := range []string{"email", "password"} {
		f := usersCreateCmd.Flags().Lookup(name)
		require.NotNil(t, f)
		assert.Equal(t, []string{"true"}, f.Annotations["cobra_annotation_bash_completion_one_required_flag"])
	}
}

func TestPrintTableAligns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printTable(&buf, []string{"ID", "EMAIL"}, [][]string{
		{"1", "ana@cecilia.digital"},
		{"12", "bia@cecilia.digital"},
	}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID  EMAIL", lines[0])
	assert.Equal(t, "1   ana@cecilia.digital", lines[1])
	assert.Equal(t, "12  bia@cecilia.digital", lines[2])
}

func TestPrintJSONIndents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, map[string]int{"published": 3}))
	assert.Equal(t, "{\n  \"published\": 3\n}\n", buf.String())
}
