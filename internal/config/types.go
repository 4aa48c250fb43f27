package config

// Config is the effective uvn configuration after defaults, the config file,
// environment variables and flags have been layered.
type Config struct {
	// Dir is the root directory environments live in. Always absolute
	// after Load.
	Dir string `mapstructure:"dir" yaml:"dir"`

	// Python is the default interpreter request for new environments.
	Python string `mapstructure:"python" yaml:"python,omitempty"`

	// LinkMode is passed to uv as --link-mode when set.
	LinkMode string `mapstructure:"link_mode" yaml:"link_mode,omitempty"`

	// UV is the uv binary name or path.
	UV string `mapstructure:"uv" yaml:"uv"`

	// Shell overrides shell detection for `uvn activate`.
	Shell string `mapstructure:"shell" yaml:"shell,omitempty"`

	// Journal enables the operation history database.
	Journal bool `mapstructure:"journal" yaml:"journal"`

	// JournalPath overrides the history database location.
	JournalPath string `mapstructure:"journal_path" yaml:"journal_path,omitempty"`
}

// Config keys, shared by the file, environment variables and flag bindings.
const (
	KeyDir         = "dir"
	KeyPython      = "python"
	KeyLinkMode    = "link_mode"
	KeyUV          = "uv"
	KeyShell       = "shell"
	KeyJournal     = "journal"
	KeyJournalPath = "journal_path"
)

// Defaults.
const (
	DefaultDir = "~/.virtualenvs"
	DefaultUV  = "uv"
)
