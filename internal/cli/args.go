package cli

import (
	"regexp"
	"strings"

	"github.com/spf13/pflag"
)

var negativeNumberPattern = regexp.MustCompile(`^-\d+(\.\d*)?([eE][-+]?\d+)?$|^-\.\d+([eE][-+]?\d+)?$`)

// normalizeArgs moves positional arguments after a "--" terminator so that
// negative coordinates are not parsed as shorthand flags.
func normalizeArgs(flags *pflag.FlagSet, args []string) []string {
	options := make([]string, 0, len(args))
	var positionals []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			positionals = append(positionals, args[i+1:]...)
			i = len(args)
		case negativeNumberPattern.MatchString(arg) || !strings.HasPrefix(arg, "-") || arg == "-":
			positionals = append(positionals, arg)
		default:
			options = append(options, arg)
			if takesValue(flags, arg) && i+1 < len(args) {
				i++
				options = append(options, args[i])
			}
		}
	}
	if len(positionals) == 0 {
		return options
	}
	return append(append(options, "--"), positionals...)
}

// takesValue reports whether arg is a flag whose value is the next argument.
func takesValue(flags *pflag.FlagSet, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	var flag *pflag.Flag
	if name, ok := strings.CutPrefix(arg, "--"); ok {
		flag = flags.Lookup(name)
	} else {
		shorthands := strings.TrimPrefix(arg, "-")
		if len(shorthands) != 1 {
			return false
		}
		flag = flags.ShorthandLookup(shorthands)
	}
	return flag != nil && flag.NoOptDefVal == ""
}
