// Package shell detects the caller's shell and renders environment
// activation commands for it.
package shell

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

// Kind identifies a supported shell.
type Kind string

const (
	Bash       Kind = "bash"
	Zsh        Kind = "zsh"
	Fish       Kind = "fish"
	Csh        Kind = "csh"
	Tcsh       Kind = "tcsh"
	Nu         Kind = "nu"
	Pwsh       Kind = "pwsh"
	PowerShell Kind = "powershell"
	Cmd        Kind = "cmd"
)

// Kinds lists every supported shell.
var Kinds = []Kind{Bash, Zsh, Fish, Csh, Tcsh, Nu, Pwsh, PowerShell, Cmd}

// ErrUnknown is returned for shells without an activation script.
var ErrUnknown = errors.New("unknown shell")

// ErrUnquotable is returned when a path can't be quoted safely for a shell.
var ErrUnquotable = errors.New("path can't be quoted for this shell")

// Names returns the supported shell names.
func Names() []string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return names
}

// Parse converts a shell name (or path to its binary) to a Kind.
func Parse(name string) (Kind, error) {
	slashed := strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	base := strings.ToLower(path.Base(slashed))
	base = strings.TrimSuffix(base, ".exe")
	for _, k := range Kinds {
		if string(k) == base {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w %q (supported: %s)", ErrUnknown, name, strings.Join(Names(), ", "))
}

// Detect guesses the current shell from the environment.
func Detect() (Kind, error) {
	return detect(os.Getenv, runtime.GOOS)
}

func detect(getenv func(string) string, goos string) (Kind, error) {
	if sh := getenv("SHELL"); sh != "" {
		return Parse(sh)
	}
	if goos == "windows" {
		if getenv("PSModulePath") != "" {
			return PowerShell, nil
		}
		return Cmd, nil
	}
	return "", fmt.Errorf("%w: $SHELL is not set", ErrUnknown)
}

// ActivateCommand returns the command that activates the environment at dir
// when evaluated by the given shell.
func ActivateCommand(kind Kind, dir string) (string, error) {
	dir = filepath.ToSlash(dir)
	switch kind {
	case Bash, Zsh:
		return "source " + posixQuote(dir+"/bin/activate"), nil
	case Fish:
		return "source " + posixQuote(dir+"/bin/activate.fish"), nil
	case Csh, Tcsh:
		return "source " + posixQuote(dir+"/bin/activate.csh"), nil
	case Nu:
		return "overlay use " + nuQuote(dir+"/bin/activate.nu"), nil
	case Pwsh:
		return psInvoke(dir + "/bin/Activate.ps1"), nil
	case PowerShell:
		return psInvoke(dir + "/Scripts/Activate.ps1"), nil
	case Cmd:
		script := dir + "/Scripts/activate.bat"
		if strings.Contains(script, `"`) {
			return "", fmt.Errorf("%w: %s", ErrUnquotable, script)
		}
		return doubleQuote(script), nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknown, string(kind))
}

// plain reports whether s needs no quoting in any supported shell.
func plain(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("/._-+:@%,=", r):
		default:
			return false
		}
	}
	return s != ""
}

func posixQuote(s string) string {
	if plain(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// nuQuote uses a raw string, r#'...'#, with enough hashes that the
// closing delimiter can't occur in s.
func nuQuote(s string) string {
	if plain(s) {
		return s
	}
	hashes := "#"
	for strings.Contains(s, "'"+hashes) {
		hashes += "#"
	}
	return "r" + hashes + "'" + s + "'" + hashes
}

// doubleQuote is only used for cmd, where s never contains a quote.
func doubleQuote(s string) string {
	if plain(s) {
		return s
	}
	return `"` + s + `"`
}

func psInvoke(s string) string {
	if plain(s) {
		return s
	}
	return "& '" + strings.ReplaceAll(s, "'", "''") + "'"
}
