package git

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedExecutor returns canned output keyed on the joined argument list.
type scriptedExecutor struct {
	responses map[string]string
	failures  map[string]error
}

func (s *scriptedExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	return s.RunDir(ctx, "", cmd, args...)
}

func (s *scriptedExecutor) RunDir(_ context.Context, _, _ string, args ...string) ([]byte, error) {
	key := strings.Join(args, " ")
	if err, ok := s.failures[key]; ok {
		return nil, err
	}
	return []byte(s.responses[key]), nil
}

func TestRemoteURL(t *testing.T) {
	ctx := context.Background()

	t.Run("prefers origin", func(t *testing.T) {
		exec := &scriptedExecutor{responses: map[string]string{
			"remote get-url origin": "https://github.com/acme/app\n",
		}}
		e := NewExecutor("git", exec)

		url, err := e.RemoteURL(ctx, "/repo")
		require.NoError(t, err)
		assert.Equal(t, "https://github.com/acme/app", url)
	})

	t.Run("falls back to first remote", func(t *testing.T) {
		exec := &scriptedExecutor{
			responses: map[string]string{
				"remote":                  "upstream\nfork\n",
				"remote get-url upstream": "https://github.com/acme/upstream\n",
			},
			failures: map[string]error{
				"remote get-url origin": errors.New("no such remote"),
			},
		}
		e := NewExecutor("git", exec)

		url, err := e.RemoteURL(ctx, "/repo")
		require.NoError(t, err)
		assert.Equal(t, "https://github.com/acme/upstream", url)
	})

	t.Run("no remotes", func(t *testing.T) {
		exec := &scriptedExecutor{
			responses: map[string]string{"remote": ""},
			failures:  map[string]error{"remote get-url origin": errors.New("no such remote")},
		}
		e := NewExecutor("git", exec)

		_, err := e.RemoteURL(ctx, "/repo")
		require.Error(t, err)
	})
}

func TestIsDirty(t *testing.T) {
	ctx := context.Background()

	t.Run("clean", func(t *testing.T) {
		exec := &scriptedExecutor{responses: map[string]string{"status --porcelain": "\n"}}
		dirty, err := NewExecutor("git", exec).IsDirty(ctx, "/repo")
		require.NoError(t, err)
		assert.False(t, dirty)
	})

	t.Run("untracked counts as dirty", func(t *testing.T) {
		exec := &scriptedExecutor{responses: map[string]string{"status --porcelain": "?? new-file.go\n"}}
		dirty, err := NewExecutor("git", exec).IsDirty(ctx, "/repo")
		require.NoError(t, err)
		assert.True(t, dirty)
	})
}

func TestBranchDetachedHead(t *testing.T) {
	exec := &scriptedExecutor{responses: map[string]string{
		"branch --show-current": "\n",
		"rev-parse --short HEAD": "abc1234\n",
	}}
	branch, err := NewExecutor("git", exec).Branch(context.Background(), "/repo")
	require.NoError(t, err)
	assert.Equal(t, "abc1234", branch)
}
