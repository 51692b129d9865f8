package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Guliveer/tweakslite/internal/schema"
	"github.com/Guliveer/tweakslite/internal/settings"
)

func schemaArg(s string) (schema.Name, error) {
	n, err := schema.ParseName(s)
	if err != nil {
		names := make([]string, 0, len(schema.Names()))
		for _, n := range schema.Names() {
			names = append(names, string(n))
		}
		return "", fmt.Errorf("%w (known: %s)", err, strings.Join(names, ", "))
	}
	return n, nil
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <schema> [key]",
		Short: "Print a setting, or every setting of a schema",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := schemaArg(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 2 {
				v, err := a.read(name, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, v)
				return nil
			}

			keys, err := a.store.Keys(name)
			if err != nil {
				return err
			}
			for _, key := range keys {
				v, err := a.read(name, key)
				if err != nil {
					return err
				}
				marker := ""
				if !a.store.IsValueDefault(name, key) {
					marker = color.YellowString(" *")
				}
				fmt.Fprintf(out, "%-32s %s%s\n", key, strings.ReplaceAll(v, "\n", ", "), marker)
			}
			return nil
		},
	}
}

// read formats the current value of key through the typed getter of its
// declared kind.
func (a *app) read(name schema.Name, key string) (string, error) {
	kind, err := a.store.KindOf(name, key)
	if err != nil {
		return "", err
	}
	switch kind {
	case settings.KindBoolean:
		return strconv.FormatBool(a.store.GetBoolean(name, key)), nil
	case settings.KindDouble:
		return strconv.FormatFloat(a.store.GetDouble(name, key), 'g', -1, 64), nil
	case settings.KindStringList:
		return strings.Join(a.store.GetStringList(name, key), "\n"), nil
	default:
		return a.store.GetString(name, key), nil
	}
}

func newSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <schema> <key> <value>",
		Short: "Change a setting",
		Long: `Change a setting. Booleans accept true/false, doubles a decimal number
and string lists either a comma-separated list or GVariant syntax such as
"['a', 'b']".`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := schemaArg(args[0])
			if err != nil {
				return err
			}
			key := args[1]
			kind, err := a.store.KindOf(name, key)
			if err != nil {
				return err
			}
			v, err := settings.ParseInput(kind, args[2])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			switch kind {
			case settings.KindBoolean:
				err = a.store.SetBoolean(ctx, name, key, v.Bool())
			case settings.KindDouble:
				err = a.store.SetDouble(ctx, name, key, v.Double())
			case settings.KindStringList:
				err = a.store.SetStringList(ctx, name, key, v.List())
			default:
				err = a.store.SetString(ctx, name, key, v.Str())
			}
			return err
		},
	}
}

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <schema> <key>",
		Short: "Restore a setting to its default",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := schemaArg(args[0])
			if err != nil {
				return err
			}
			return a.store.Reset(cmd.Context(), name, args[1])
		},
	}
}

func newDefaultCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "default <schema> <key>",
		Short: "Print the default of a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := schemaArg(args[0])
			if err != nil {
				return err
			}
			key := args[1]
			kind, err := a.store.KindOf(name, key)
			if err != nil {
				return err
			}

			var (
				text string
				ok   bool
			)
			switch kind {
			case settings.KindBoolean:
				var b bool
				b, ok = a.store.GetDefaultBoolean(name, key)
				text = strconv.FormatBool(b)
			case settings.KindDouble:
				var d float64
				d, ok = a.store.GetDefaultDouble(name, key)
				text = strconv.FormatFloat(d, 'g', -1, 64)
			case settings.KindString:
				text, ok = a.store.GetDefaultString(name, key)
			default:
				var v settings.Value
				v, ok = a.store.Default(name, key)
				text = v.String()
			}
			if !ok {
				return fmt.Errorf("%s.%s has no default", name, key)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, text)
			if a.store.IsValueDefault(name, key) {
				fmt.Fprintln(out, color.GreenString("(current value)"))
			}
			return nil
		},
	}
}

func newValuesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "values <schema> <key>",
		Short: "List the allowed values of an enumerated setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := schemaArg(args[0])
			if err != nil {
				return err
			}
			key := args[1]
			values, ok := a.store.GetAvailableValues(name, key)
			if !ok {
				return fmt.Errorf("%s.%s is not an enumeration", name, key)
			}
			def, _ := a.store.GetDefaultString(name, key)
			current := a.store.GetString(name, key)
			printValues(cmd.OutOrStdout(), settings.MarkDefaultInList(values, def), values, current)
			return nil
		},
	}
}

func printValues(out io.Writer, labels, values []string, current string) {
	for i, label := range labels {
		if values[i] == current {
			fmt.Fprintln(out, color.CyanString("→")+" "+label)
			continue
		}
		fmt.Fprintln(out, "  "+label)
	}
}

func newListCmd(a *app) *cobra.Command {
	list := &cobra.Command{
		Use:   "list",
		Short: "Edit string list settings",
	}
	list.AddCommand(
		&cobra.Command{
			Use:     "add <schema> <key> <item>",
			Short:   "Append an item unless the list already has it",
			Example: "  tweakslite list add shell enabled-extensions appindicator@ubuntu.com",
			Args:    cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				name, err := schemaArg(args[0])
				if err != nil {
					return err
				}
				return a.store.AddToList(cmd.Context(), name, args[1], args[2])
			},
		},
		&cobra.Command{
			Use:   "remove <schema> <key> <item>",
			Short: "Remove every occurrence of an item",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				name, err := schemaArg(args[0])
				if err != nil {
					return err
				}
				return a.store.RemoveFromList(cmd.Context(), name, args[1], args[2])
			},
		},
	)
	return list
}
