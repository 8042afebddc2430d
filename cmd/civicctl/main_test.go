package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/civic_incident_system/internal/auth"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestHashPassword(t *testing.T) {
	t.Run("from argument", func(t *testing.T) {
		out, err := execute(t, "", "hash-password", "secret1")
		require.NoError(t, err)
		assert.True(t, auth.CheckPassword(strings.TrimSpace(out), "secret1"))
	})

	t.Run("from stdin", func(t *testing.T) {
		out, err := execute(t, "secret2\n", "hash-password")
		require.NoError(t, err)
		assert.True(t, auth.CheckPassword(strings.TrimSpace(out), "secret2"))
	})

	t.Run("empty stdin", func(t *testing.T) {
		_, err := execute(t, "", "hash-password")
		assert.EqualError(t, err, "password is empty")
	})
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	for _, sub := range []string{"up", "down", "version"} {
		t.Run(sub, func(t *testing.T) {
			_, err := execute(t, "", "migrate", sub, "--database-url", "")
			assert.ErrorIs(t, err, errNoDatabaseURL)
		})
	}
}

func TestCreateAdminRequiresFlags(t *testing.T) {
	_, err := execute(t, "", "create-admin", "--database-url", "postgres://localhost/civic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
