package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dayflow/internal/auth"
)

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, path := range [][]string{{"token", "issue"}, {"store", "ensure"}, {"attendance", "reset"}} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err, "command %v should exist", path)
		assert.Equal(t, path[len(path)-1], sub.Name())
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("JWT_SIGNING_KEY", "cli-test-key")
	t.Setenv("JWT_ISSUER", "dayflow")

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenIssueJSON(t *testing.T) {
	out, err := run(t, "token", "issue", "--owner", "U1", "--format", "json")
	require.NoError(t, err)

	var pair auth.TokenPair
	require.NoError(t, json.Unmarshal([]byte(out), &pair))
	claims, err := auth.Parse(pair.AccessToken, "cli-test-key", "dayflow")
	require.NoError(t, err)
	assert.Equal(t, "U1", claims.Subject)
	assert.Equal(t, auth.DefaultRole, claims.Role)
}

func TestTokenIssueRequiresOwner(t *testing.T) {
	_, err := run(t, "token", "issue")
	assert.Error(t, err)
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "token", "issue", "--owner", "U1", "--format", "yaml")
	assert.ErrorContains(t, err, "invalid format")
}

func TestStoreEnsure(t *testing.T) {
	out, err := run(t, "store", "ensure")
	require.NoError(t, err)
	assert.Contains(t, out, "indexes ensured on memory")
}

func TestAttendanceReset(t *testing.T) {
	_, err := run(t, "attendance", "reset")
	assert.ErrorContains(t, err, "--yes")

	out, err := run(t, "attendance", "reset", "--yes", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"deleted":0}`, out)
}

func TestUnknownBackendFails(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"store", "ensure"})
	t.Setenv("STORE_BACKEND", "cassandra")
	err := cmd.Execute()
	assert.ErrorContains(t, err, "cassandra")
}
