package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
)

const defaultConfigPath = "config.yml"

// ErrUsage signals that the command line was incomplete. Callers print
// Usage and exit without reporting a failure.
var ErrUsage = errors.New("usage")

// Args holds the positional and flag arguments of the run command.
type Args struct {
	ConfigPath   string
	ManifestPath string
	SourceRoot   string
	DestRoot     string
}

// Usage is printed whenever the command line cannot be used.
const Usage = `Usage:
  audiomirror run [options] <source folder> <destination folder>

Options:
  --file <manifest>   process only the paths listed in the manifest (one per line);
                      the source folder is used as the root for destination subfolders
  --config <path>     YAML config file (default config.yml)
`

// ParseArgs parses the arguments following the program name.
func ParseArgs(argv []string) (Args, error) {
	if len(argv) == 0 || argv[0] != "run" {
		return Args{}, ErrUsage
	}

	var args Args
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&args.ManifestPath, "file", "", "manifest of paths to process")
	fs.StringVar(&args.ConfigPath, "config", defaultConfigPath, "YAML config file")
	if err := fs.Parse(argv[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return Args{}, ErrUsage
		}
		return Args{}, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	rest := fs.Args()
	if len(rest) < 2 {
		return Args{}, ErrUsage
	}
	args.SourceRoot = rest[0]
	args.DestRoot = rest[1]
	return args, nil
}
