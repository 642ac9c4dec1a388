package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/taskbot/core/fsm"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "fsm", "version"} {
		assert.True(t, names[want], want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestVersionJSON(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--json"})
	require.NoError(t, root.Execute())

	var v versionOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &v))
	assert.Equal(t, "dev", v.Version)
	assert.NotEmpty(t, v.GoVersion)
}

func TestParseUserID(t *testing.T) {
	id, err := parseUserID("42")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	_, err = parseUserID("abc")
	assert.Error(t, err)
	_, err = parseUserID("0")
	assert.Error(t, err)
}

func TestPrintRecord(t *testing.T) {
	ctx := context.Background()
	engine, err := fsm.NewEngine(ctx, fsm.NewMemoryStore(), fsm.Options{})
	require.NoError(t, err)
	require.NoError(t, engine.UpdateState(ctx, 7, "main_menu"))
	_, err = engine.UpdateData(ctx, 7, fsm.Data{"owner_id": 7})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printRecord(&out, engine, 7))
	assert.Contains(t, out.String(), "state: main_menu")
	assert.Contains(t, out.String(), `"owner_id": 7`)

	assert.Error(t, printRecord(&out, engine, 8))
}
