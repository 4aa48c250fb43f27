package shell

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "bash", want: Bash},
		{in: "/bin/zsh", want: Zsh},
		{in: "/usr/local/bin/fish", want: Fish},
		{in: "NU", want: Nu},
		{in: `C:\Program Files\PowerShell\7\pwsh.exe`, want: Pwsh},
		{in: "tcsh", want: Tcsh},
		{in: "ksh", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknown)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	env := func(vars map[string]string) func(string) string {
		return func(k string) string { return vars[k] }
	}

	tests := []struct {
		name    string
		vars    map[string]string
		goos    string
		want    Kind
		wantErr bool
	}{
		{name: "SHELL basename", vars: map[string]string{"SHELL": "/bin/bash"}, goos: "linux", want: Bash},
		{name: "unknown SHELL", vars: map[string]string{"SHELL": "/bin/ksh"}, goos: "linux", wantErr: true},
		{name: "unset on unix", vars: nil, goos: "darwin", wantErr: true},
		{name: "windows powershell", vars: map[string]string{"PSModulePath": `C:\ps`}, goos: "windows", want: PowerShell},
		{name: "windows cmd", vars: nil, goos: "windows", want: Cmd},
		{name: "SHELL wins on windows", vars: map[string]string{"SHELL": "/usr/bin/bash"}, goos: "windows", want: Bash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := detect(env(tt.vars), tt.goos)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknown)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActivateCommand(t *testing.T) {
	t.Parallel()

	const env = "/home/u/.virtualenvs/demo"
	tests := []struct {
		kind Kind
		want string
	}{
		{Bash, "source /home/u/.virtualenvs/demo/bin/activate"},
		{Zsh, "source /home/u/.virtualenvs/demo/bin/activate"},
		{Fish, "source /home/u/.virtualenvs/demo/bin/activate.fish"},
		{Csh, "source /home/u/.virtualenvs/demo/bin/activate.csh"},
		{Tcsh, "source /home/u/.virtualenvs/demo/bin/activate.csh"},
		{Nu, "overlay use /home/u/.virtualenvs/demo/bin/activate.nu"},
		{Pwsh, "/home/u/.virtualenvs/demo/bin/Activate.ps1"},
		{PowerShell, "/home/u/.virtualenvs/demo/Scripts/Activate.ps1"},
		{Cmd, "/home/u/.virtualenvs/demo/Scripts/activate.bat"},
	}

	require.Len(t, tests, len(Kinds), "every shell has a case")
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()

			got, err := ActivateCommand(tt.kind, env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActivateCommand_Quoting(t *testing.T) {
	t.Parallel()

	const env = "/home/u/my envs/it's"
	tests := []struct {
		kind Kind
		want string
	}{
		{Bash, `source '/home/u/my envs/it'\''s/bin/activate'`},
		{Fish, `source '/home/u/my envs/it'\''s/bin/activate.fish'`},
		{Nu, `overlay use r#'/home/u/my envs/it's/bin/activate.nu'#`},
		{Pwsh, `& '/home/u/my envs/it''s/bin/Activate.ps1'`},
		{Cmd, `"/home/u/my envs/it's/Scripts/activate.bat"`},
	}

	for _, tt := range tests {
		got, err := ActivateCommand(tt.kind, env)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.kind)
	}
}

func TestActivateCommand_NuRawString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dir  string
		want string
	}{
		{`/home/u/say "hi"`, `overlay use r#'/home/u/say "hi"/bin/activate.nu'#`},
		{`/home/u/back\slash`, `overlay use r#'/home/u/back\slash/bin/activate.nu'#`},
		{`/home/u/it'#s`, `overlay use r##'/home/u/it'#s/bin/activate.nu'##`},
	}

	for _, tt := range tests {
		if runtime.GOOS == "windows" && strings.Contains(tt.dir, `\`) {
			continue // separators are converted on Windows
		}
		got, err := ActivateCommand(Nu, tt.dir)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.dir)
	}
}

func TestActivateCommand_CmdRejectsQuote(t *testing.T) {
	t.Parallel()

	_, err := ActivateCommand(Cmd, `/home/u/say "hi"`)
	require.ErrorIs(t, err, ErrUnquotable)
}

func TestActivateCommand_Unknown(t *testing.T) {
	t.Parallel()

	_, err := ActivateCommand("ksh", "/envs/demo")
	require.ErrorIs(t, err, ErrUnknown)
}
