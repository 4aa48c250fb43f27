package uv_test

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Quidge/uvn/internal/uv"
)

// recordingRunner records every command and replies with a canned result.
type recordingRunner struct {
	calls  []uv.Command
	result uv.Result
	err    error
}

func (r *recordingRunner) Run(_ context.Context, cmd uv.Command) (uv.Result, error) {
	r.calls = append(r.calls, cmd)
	return r.result, r.err
}

func TestVenv_Args(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts uv.VenvOptions
		want []string
	}{
		{
			name: "defaults",
			opts: uv.VenvOptions{},
			want: []string{"venv", "--no-project", "--no-config", "--python-preference", "only-managed", "/envs/demo"},
		},
		{
			name: "python and link mode",
			opts: uv.VenvOptions{Python: "3.12", LinkMode: uv.LinkCopy},
			want: []string{
				"venv", "--no-project", "--no-config", "--python-preference", "only-managed",
				"--python", "3.12", "--link-mode", "copy", "/envs/demo",
			},
		},
		{
			name: "quiet with extra args",
			opts: uv.VenvOptions{Quiet: true, ExtraArgs: []string{"--seed"}},
			want: []string{
				"venv", "--no-project", "--no-config", "--python-preference", "only-managed",
				"--quiet", "--seed", "/envs/demo",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner := &recordingRunner{}
			client := uv.New(runner, uv.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))

			require.NoError(t, client.Venv(t.Context(), "/envs/demo", tt.opts))
			require.Len(t, runner.calls, 1)
			assert.Equal(t, tt.want, runner.calls[0].Args)
			assert.Empty(t, runner.calls[0].Name)
			assert.NotNil(t, runner.calls[0].Stdout, "venv output should be relayed")
		})
	}
}

func TestFreeze(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{result: uv.Result{Stdout: "requests==2.31.0\n"}}
	client := uv.New(runner)

	out, err := client.Freeze(t.Context(), "/envs/demo/bin/python")
	require.NoError(t, err)
	assert.Equal(t, "requests==2.31.0\n", out)
	assert.Equal(t, []string{"pip", "freeze", "--python", "/envs/demo/bin/python"}, runner.calls[0].Args)
	assert.Nil(t, runner.calls[0].Stdout)
}

func TestTree(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{result: uv.Result{Stdout: "requests v2.31.0\n"}}
	client := uv.New(runner)

	_, err := client.Tree(t.Context(), "/envs/demo/bin/python")
	require.NoError(t, err)
	assert.Equal(t, []string{"pip", "tree", "--depth", "0", "--python", "/envs/demo/bin/python"}, runner.calls[0].Args)
}

func TestInstall_Args(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	client := uv.New(runner, uv.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))

	err := client.Install(t.Context(), "/envs/b/bin/python", "/tmp/req.txt", uv.InstallOptions{
		LinkMode: uv.LinkHardlink,
		Quiet:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"pip", "install", "--python", "/envs/b/bin/python", "-r", "/tmp/req.txt",
		"--link-mode", "hardlink", "--quiet",
	}, runner.calls[0].Args)
}

func TestLock_QuietSuppressesRelay(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	client := uv.New(runner)

	require.NoError(t, client.Lock(t.Context(), "/tmp/project", true))
	assert.Equal(t, []string{"lock", "--directory", "/tmp/project", "--quiet"}, runner.calls[0].Args)
	assert.Nil(t, runner.calls[0].Stdout)
	assert.Nil(t, runner.calls[0].Stderr)
}

func TestPythonVersion_RunsInterpreter(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{result: uv.Result{Stdout: "3.12.4"}}
	client := uv.New(runner)

	version, err := client.PythonVersion(t.Context(), "/envs/demo/bin/python")
	require.NoError(t, err)
	assert.Equal(t, "3.12.4", version)
	assert.Equal(t, "/envs/demo/bin/python", runner.calls[0].Name)
}

func TestNonZeroExit(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{result: uv.Result{ExitCode: 2, Stderr: "error: No virtual environment found\n"}}
	client := uv.New(runner)

	_, err := client.Freeze(t.Context(), "/envs/demo/bin/python")
	require.Error(t, err)
	assert.ErrorIs(t, err, uv.ErrExit)

	var exitErr *uv.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.ExitCode)
	assert.Equal(t, []string{"uv", "pip", "freeze", "--python", "/envs/demo/bin/python"}, exitErr.Args)
	assert.Contains(t, err.Error(), "No virtual environment found")
}

func TestNonZeroExit_RelayedStderrNotRepeated(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{result: uv.Result{ExitCode: 2, Stderr: "error: No interpreter found\n"}}
	client := uv.New(runner, uv.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))

	err := client.Venv(t.Context(), "/envs/demo", uv.VenvOptions{Python: "9.9"})

	var exitErr *uv.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.ExitCode)
	assert.Empty(t, exitErr.Stderr)
	assert.NotContains(t, err.Error(), "No interpreter found")
}

func TestRunnerError(t *testing.T) {
	t.Parallel()

	boom := errors.New("exec: \"uv\": executable file not found in $PATH")
	client := uv.New(&recordingRunner{err: boom})

	_, err := client.Freeze(t.Context(), "/envs/demo/bin/python")
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, uv.ErrExit)
}

func TestIsValidLinkMode(t *testing.T) {
	t.Parallel()

	modes := append([]string{""}, uv.LinkModes...)
	for _, mode := range modes {
		assert.True(t, uv.IsValidLinkMode(mode), mode)
	}
	assert.False(t, uv.IsValidLinkMode("reflink"))
}

func TestExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	t.Parallel()

	runner := &uv.ExecRunner{Binary: "sh"}

	var live bytes.Buffer
	res, err := runner.Run(t.Context(), uv.Command{
		Args:   []string{"-c", "echo out; echo err >&2; exit 3"},
		Stdout: &live,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "sh", res.Name)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, "out\n", live.String())
}

func TestClient_ExitErrorNamesConfiguredBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	t.Parallel()

	client := uv.New(&uv.ExecRunner{Binary: "sh"})

	_, err := client.Freeze(t.Context(), "/envs/demo/bin/python")

	var exitErr *uv.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, "sh", exitErr.Args[0])
	assert.NotContains(t, err.Error(), "uv pip")
}

func TestExecRunner_MissingBinary(t *testing.T) {
	t.Parallel()

	runner := &uv.ExecRunner{Binary: "uvn-test-binary-that-does-not-exist"}

	_, err := runner.Run(t.Context(), uv.Command{Args: []string{"--version"}})
	require.Error(t, err)
}

func TestExecRunner_Env(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	t.Parallel()

	runner := &uv.ExecRunner{Binary: "sh"}

	res, err := runner.Run(t.Context(), uv.Command{
		Args: []string{"-c", "printf %s \"$UVN_TEST_VALUE\""},
		Env:  []string{"UVN_TEST_VALUE=hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Stdout)
}
