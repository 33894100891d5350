package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/utils"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--env-file", t.TempDir() + "/none.env"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "travel-booking dev (commit=none, built=unknown)\n", out)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	out, err := run(t, "token", "--user", "u7", "--role", "manager", "--ttl", "5")
	require.NoError(t, err)

	id, err := utils.ParseAccessToken("cli-secret", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, utils.Identity{UserID: "u7", Role: "manager"}, id)
}

func TestTokenCommandErrors(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	_, err := run(t, "token")
	assert.ErrorContains(t, err, "user")

	t.Setenv("JWT_SECRET", "")
	_, err = run(t, "token", "--user", "u7")
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestPrintChanges(t *testing.T) {
	var buf bytes.Buffer
	printChanges(&buf, nil, false)
	assert.Equal(t, "all table flags are consistent\n", buf.String())

	buf.Reset()
	printChanges(&buf, []model.TableAvailabilityChange{{TableID: "t4", RestaurantID: "r1", From: false, To: true}}, true)
	assert.Equal(t, "would update table t4 (restaurant r1): is_available false -> true\n1 table(s) would update\n", buf.String())
}

func TestCommandsRegistered(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"serve", "migrate", "reconcile", "token", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	serve, _, _ := root.Find([]string{"serve"})
	assert.NotNil(t, serve.Flags().Lookup("migrate"))
	reconcile, _, _ := root.Find([]string{"reconcile"})
	assert.NotNil(t, reconcile.Flags().Lookup("dry-run"))
	assert.NotNil(t, reconcile.Flags().Lookup("restaurant"))
}
