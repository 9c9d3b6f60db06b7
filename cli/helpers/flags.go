package helpers

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/compozy/bomkit/pkg/config/definition"
)

// AddConfigFlags registers the flags of the given configuration paths on cmd, using the
// defaults and help text of the field registry.
func AddConfigFlags(cmd *cobra.Command, persistent bool, paths ...string) {
	registry := definition.CreateRegistry()
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	for _, path := range paths {
		field, ok := registry.GetField(path)
		if !ok || field.CLIFlag == "" {
			panic(fmt.Sprintf("no CLI flag registered for %s", path))
		}
		addFlag(flags, &field)
	}
}

func addFlag(flags *pflag.FlagSet, field *definition.FieldDef) {
	switch field.Type.Kind() {
	case reflect.Bool:
		def, _ := field.Default.(bool)
		flags.BoolP(field.CLIFlag, field.Shorthand, def, field.Help)
	case reflect.Int:
		def, _ := field.Default.(int)
		flags.IntP(field.CLIFlag, field.Shorthand, def, field.Help)
	default:
		def, _ := field.Default.(string)
		flags.StringP(field.CLIFlag, field.Shorthand, def, field.Help)
	}
}

// ChangedFlags returns the values of the flags set explicitly on the command line, keyed
// by flag name.
func ChangedFlags(cmd *cobra.Command) map[string]any {
	out := make(map[string]any)
	visit := func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		switch f.Value.Type() {
		case "bool":
			out[f.Name] = f.Value.String() == "true"
		default:
			out[f.Name] = f.Value.String()
		}
	}
	cmd.LocalFlags().VisitAll(visit)
	cmd.InheritedFlags().VisitAll(visit)
	return out
}

var indentEscapes = strings.NewReplacer(`\t`, "\t", `\s`, " ")

// UnescapeIndent expands the \t and \s escapes accepted by --indent-string.
func UnescapeIndent(s string) string {
	return indentEscapes.Replace(s)
}
