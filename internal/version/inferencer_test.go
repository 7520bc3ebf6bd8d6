package version

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronicle/pkg/errors"
)

type bumpCase struct {
	current  string
	expected string
	messages []string
}

// Cases whose outcome is identical under every policy combination.
var sharedCases = []bumpCase{
	{"1.0.0", "1.1.0", []string{"feat: add xyz", "fix: fix xyz"}},
	{"1.0.0", "1.0.1", []string{"fix: add xyz", "fix: aaaaaa"}},
	{"1.0.0", "2.0.0", []string{"feat!: add xyz", "feat: zzz"}},
	{"1.0.0", "2.0.0", []string{"feat!: add xyz\n", "feat: zzz\n"}},
	{"2.0.0", "2.0.1", []string{"fix: something"}},
	{"foo/1.0.0", "foo/1.1.0", []string{"feat: add xyz", "fix: fix xyz"}},
	{"bar/1.0.0", "bar/2.0.0", []string{"fix: add xyz", "fix!: aaaaaa"}},
	{"zzz-123/test/1.0.0", "zzz-123/test/1.0.1", []string{"fix: aaaaaa"}},
	{"v100.0.0", "v101.0.0", []string{"feat!: something"}},
	{"v1.0.0-alpha.1", "v1.0.0-alpha.2", []string{"fix: minor"}},
	{"testing/v1.0.0-beta.1", "testing/v1.0.0-beta.2", []string{"feat: nice"}},
	{"tauri-v1.5.4", "tauri-v1.6.0", []string{"feat: something"}},
	{"rocket/rocket-v4.0.0-rc.1", "rocket/rocket-v4.0.0-rc.2", []string{"chore!: wow"}},
	{
		"aaa#/@#$@9384!#%^#@#@!#!239432413-idk-9999.2200.5932-alpha.419",
		"aaa#/@#$@9384!#%^#@#@!#!239432413-idk-9999.2200.5932-alpha.420",
		[]string{"feat: damn this is working"},
	},
}

func runCases(t *testing.T, policy Policy, cases []bumpCase) {
	t.Helper()
	inferencer := New(nil)
	for _, tc := range append(append([]bumpCase{}, sharedCases...), cases...) {
		next, err := inferencer.Infer(tc.current, tc.messages, policy)
		require.NoError(t, err, "current=%s commits=%v", tc.current, tc.messages)
		assert.Equal(t, tc.expected, next, "current=%s commits=%v", tc.current, tc.messages)
	}
}

func TestInferDefaultPolicy(t *testing.T) {
	runCases(t, DefaultPolicy(), []bumpCase{
		{"0.0.1", "0.0.2", []string{"fix: fix xyz"}},
		{"0.0.1", "0.1.0", []string{"feat: add xyz", "fix: fix xyz"}},
		{"0.0.1", "1.0.0", []string{"feat!: add xyz", "feat: zzz"}},
		{"0.1.0", "0.1.1", []string{"fix: fix xyz"}},
		{"0.1.0", "0.2.0", []string{"feat: add xyz", "fix: fix xyz"}},
		{"0.1.0", "1.0.0", []string{"feat!: add xyz", "feat: zzz"}},
	})
}

func TestInferNothingAlwaysBumps(t *testing.T) {
	policy := Policy{FeaturesAlwaysBumpMinor: false, BreakingAlwaysBumpMajor: false}
	runCases(t, policy, []bumpCase{
		{"0.0.1", "0.0.2", []string{"fix: fix xyz"}},
		{"0.0.1", "0.0.2", []string{"feat: add xyz", "fix: fix xyz"}},
		{"0.0.1", "0.0.2", []string{"feat!: add xyz", "feat: zzz"}},
		{"0.1.0", "0.1.1", []string{"fix: fix xyz"}},
		{"0.1.0", "0.1.1", []string{"feat: add xyz", "fix: fix xyz"}},
		{"0.1.0", "0.2.0", []string{"feat!: add xyz", "feat: zzz"}},
	})
}

func TestInferFeaturesAlwaysBumpMinor(t *testing.T) {
	policy := Policy{FeaturesAlwaysBumpMinor: true, BreakingAlwaysBumpMajor: false}
	runCases(t, policy, []bumpCase{
		{"0.0.1", "0.0.2", []string{"fix: fix xyz"}},
		{"0.0.1", "0.1.0", []string{"feat: add xyz", "fix: fix xyz"}},
		{"0.0.1", "0.1.0", []string{"feat!: add xyz", "feat: zzz"}},
		{"0.1.0", "0.1.1", []string{"fix: fix xyz"}},
		{"0.1.0", "0.2.0", []string{"feat: add xyz", "fix: fix xyz"}},
		{"0.1.0", "0.2.0", []string{"feat!: add xyz", "feat: zzz"}},
	})
}

func TestInferBreakingAlwaysBumpsMajor(t *testing.T) {
	policy := Policy{FeaturesAlwaysBumpMinor: false, BreakingAlwaysBumpMajor: true}
	runCases(t, policy, []bumpCase{
		{"0.0.1", "0.0.2", []string{"fix: fix xyz"}},
		{"0.0.1", "0.0.2", []string{"feat: add xyz", "fix: fix xyz"}},
		{"0.0.1", "1.0.0", []string{"feat!: add xyz", "feat: zzz"}},
		{"0.1.0", "0.1.1", []string{"fix: fix xyz"}},
		{"0.1.0", "0.1.1", []string{"feat: add xyz", "fix: fix xyz"}},
		{"0.1.0", "1.0.0", []string{"feat!: add xyz", "feat: zzz"}},
	})
}

func TestInferNoPreviousVersion(t *testing.T) {
	var warned string
	inferencer := New(func(format string, args ...interface{}) {
		warned = fmt.Sprintf(format, args...)
	})

	for _, policy := range []Policy{
		{true, true}, {true, false}, {false, true}, {false, false},
	} {
		next, err := inferencer.Infer("", []string{"feat!: anything"}, policy)
		require.NoError(t, err)
		assert.Equal(t, "0.1.0", next)
	}
	assert.Contains(t, warned, "0.1.0")
}

func TestInferEmptyCommitList(t *testing.T) {
	next, err := New(nil).Infer("1.2.3", nil, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, "1.2.4", next)
}

func TestInferTrailingNewlineInvariance(t *testing.T) {
	inferencer := New(nil)
	plain, err := inferencer.Infer("1.0.0", []string{"feat!: add xyz"}, DefaultPolicy())
	require.NoError(t, err)
	newline, err := inferencer.Infer("1.0.0", []string{"feat!: add xyz\n"}, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, plain, newline)
}

func TestInferUnparsableVersion(t *testing.T) {
	_, err := New(nil).Infer("not.a.version", []string{"fix: x"}, DefaultPolicy())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeVersionParse, errors.GetErrorCode(err))

	// No dot-delimited segments at all: prefix extraction is not attempted.
	_, err = New(nil).Infer("garbage", []string{"fix: x"}, DefaultPolicy())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeVersionParse, errors.GetErrorCode(err))
}
