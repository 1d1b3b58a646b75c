// Copyright 2020 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package tool

import (
	"flag"
	"fmt"
	"io"
)

// ParseFlags parses subcommand flags and checks the number of positional arguments.
// maxArgs < 0 means no upper limit.
func ParseFlags(set *flag.FlagSet, args []string, minArgs, maxArgs int) ([]string, error) {
	set.SetOutput(io.Discard)
	if err := set.Parse(args); err != nil {
		return nil, fmt.Errorf("%v: %w", set.Name(), err)
	}
	rest := set.Args()
	if len(rest) < minArgs || maxArgs >= 0 && len(rest) > maxArgs {
		return nil, fmt.Errorf("%v: %v", set.Name(), argsWant(minArgs, maxArgs, len(rest)))
	}
	return rest, nil
}

func argsWant(min, max, got int) string {
	switch {
	case min == max:
		return fmt.Sprintf("want %v arguments, got %v", min, got)
	case max < 0:
		return fmt.Sprintf("want at least %v arguments, got %v", min, got)
	}
	return fmt.Sprintf("want %v to %v arguments, got %v", min, max, got)
}
