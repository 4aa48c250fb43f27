package config

// Template is the default config written by `uvn config init`.
// It includes comments explaining each option.
const Template = `# uvn configuration
# Location: ~/.config/uvn/config.yaml
#
# Every key can also be set through the environment as UVN_<KEY>
# (for example UVN_DIR). Command-line flags win over both.

# Directory that holds the environments
dir: ~/.virtualenvs

# Default interpreter for new environments (falls back to UV_PYTHON)
# python: "3.12"

# How uv links packages from its cache: clone, copy, hardlink or symlink
# (falls back to UV_LINK_MODE)
# link_mode: hardlink

# uv binary to run
uv: uv

# Shell used by "uvn activate" when auto-detection is wrong
# shell: zsh

# Keep a history of create, fork and remove operations
journal: true

# History database (default: ~/.local/share/uvn/journal.db)
# journal_path: ~/.local/share/uvn/journal.db
`
