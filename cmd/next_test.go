package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeNext(t *testing.T, args ...string) (string, error) {
	t.Helper()
	b := bytes.NewBufferString("")
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)
	rootCmd.SetArgs(append([]string{"next"}, args...))
	err := rootCmd.Execute()
	return b.String(), err
}

func TestNextWithCurrentVersion(t *testing.T) {
	out, err := executeNext(t, "--current", "1.2.3", "feat: add new endpoint")
	require.NoError(t, err)
	assert.Equal(t, "1.3.0\n", out)
}

func TestNextBreakingChange(t *testing.T) {
	out, err := executeNext(t, "--current", "1.2.3", "refactor!: drop deprecated api")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0\n", out)
}

func TestNextKeepsVersionPrefix(t *testing.T) {
	out, err := executeNext(t, "--current", "v1.2.3", "fix: handle empty pages")
	require.NoError(t, err)
	assert.Equal(t, "v1.2.4\n", out)
}

func TestNextPolicyFlagsOverrideDefaults(t *testing.T) {
	out, err := executeNext(t, "--current", "0.5.0", "feat!: rework config",
		"--breaking-bump-major=false")
	require.NoError(t, err)
	assert.Equal(t, "0.6.0\n", out)

	out, err = executeNext(t, "--current", "0.5.0", "feat: small addition",
		"--breaking-bump-major=true", "--features-bump-minor=false")
	require.NoError(t, err)
	assert.Equal(t, "0.5.1\n", out)
}

func TestNextInvalidCurrentVersion(t *testing.T) {
	_, err := executeNext(t, "--current", "not.a.version", "fix: something")
	assert.Error(t, err)
}
