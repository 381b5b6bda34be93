// Package config loads a project-wide settings file (a TOML document, the
// same format the teacher's internal/tqw and internal/game packages use
// for world/save data) and overlays CLI flags on top of it, so a project
// can check in shared defaults (output directory, default file name
// prefix, verbose/debug toggles, %expect policy) while still letting a
// one-off invocation override any of them.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// File is the on-disk project settings document, conventionally named
// ".yacc.toml" in the current directory. Load reads only the path it is
// given; ancestor directories are not searched.
type File struct {
	// FileNamePrefix is prepended to every generated artifact's name,
	// equivalent to yacc's -b FILE_PREFIX flag.
	FileNamePrefix string `toml:"file_prefix"`

	// OutputDir is the directory generated artifacts are written to.
	OutputDir string `toml:"output_dir"`

	// Language names a target emission language, "c" by default. The
	// emitter does not read it: generated tables are always Go source.
	Language string `toml:"language"`

	Verbose     bool `toml:"verbose"`
	Debug       bool `toml:"debug"`
	LineDirectives bool `toml:"line_directives"`
	Strict      bool `toml:"strict"`

	ExpectSR int `toml:"expect_sr"`
	ExpectRR int `toml:"expect_rr"`
}

// Default returns the settings a bare invocation uses when no project
// file is present.
func Default() File {
	return File{
		FileNamePrefix: "y",
		OutputDir:      ".",
		Language:       "c",
		LineDirectives: true,
		ExpectSR:       -1,
		ExpectRR:       -1,
	}
}

// Load reads and parses a TOML project file at path, starting from
// Default() so any field the file omits keeps its default value.
func Load(path string) (File, error) {
	f := Default()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return f, err
	}
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return f, err
	}
	return f, nil
}

// Overrides holds CLI-flag overrides for a loaded File. Each field is a
// pointer so Apply can distinguish
// "flag not given" (nil) from "flag given" without needing pflag's
// Changed() bookkeeping threaded through every call site.
type Overrides struct {
	FileNamePrefix *string
	OutputDir      *string
	Verbose        *bool
	Debug          *bool
	Strict         *bool
	ExpectSR       *int
	ExpectRR       *int
}

// Apply merges o into f, returning the merged result. A nil field in o
// leaves f's value untouched.
func (f File) Apply(o Overrides) File {
	if o.FileNamePrefix != nil {
		f.FileNamePrefix = *o.FileNamePrefix
	}
	if o.OutputDir != nil {
		f.OutputDir = *o.OutputDir
	}
	if o.Verbose != nil {
		f.Verbose = *o.Verbose
	}
	if o.Debug != nil {
		f.Debug = *o.Debug
	}
	if o.Strict != nil {
		f.Strict = *o.Strict
	}
	if o.ExpectSR != nil {
		f.ExpectSR = *o.ExpectSR
	}
	if o.ExpectRR != nil {
		f.ExpectRR = *o.ExpectRR
	}
	return f
}
