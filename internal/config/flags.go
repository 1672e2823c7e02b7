package config

import (
	"flag"
	"fmt"
)

// parses `migrate <up|down|status|version|up-to|down-to> [-version N] [-dir path]`
func ParseMigrateFlags(args []string) (Flags, error) {
	if len(args) == 0 {
		return Flags{}, fmt.Errorf("missing migrate command (up, down, status, version, up-to, down-to)")
	}

	fs := flag.NewFlagSet("migrate "+args[0], flag.ContinueOnError)
	version := fs.Int64("version", 0, "target version for up-to/down-to")
	dir := fs.String("dir", "migrations", "migrations directory inside the embedded filesystem")

	if err := fs.Parse(args[1:]); err != nil {
		return Flags{}, err
	}

	switch args[0] {
	case "up", "down", "status", "version":
	case "up-to", "down-to":
		if *version <= 0 {
			return Flags{}, fmt.Errorf("%s requires -version", args[0])
		}
	default:
		return Flags{}, fmt.Errorf("unknown migrate command %q", args[0])
	}

	return Flags{Command: args[0], Version: *version, Dir: *dir}, nil
}
