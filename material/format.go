package material

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// DefaultIndent is the number of spaces per nesting level used by
// [Item.String].
const DefaultIndent = 2

// Format writes it and its subtree in native material script syntax.
// The root writes its children, separating consecutive top-level blocks by a
// blank line.
func (it *Item) Format(_ context.Context, w io.Writer, indent int) error {
	var sb strings.Builder

	if it.IsRoot() {
		for i, c := range it.children {
			if i > 0 && c.block && it.children[i-1].block {
				sb.WriteByte('\n')
			}

			formatItem(&sb, c, indent, 0)
		}
	} else {
		formatItem(&sb, it, indent, 0)
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

// formatItem writes one statement at the given depth.
func formatItem(sb *strings.Builder, it *Item, indent, depth int) {
	pad := strings.Repeat(" ", indent*depth)

	sb.WriteString(pad)
	sb.WriteString(it.kind)

	if it.kind == importKind && !it.block {
		sb.WriteByte(' ')
		sb.WriteString(strings.Join(it.args, ", "))
		sb.WriteString(" from ")
		sb.WriteString(strconv.Quote(it.name))
		sb.WriteByte('\n')

		return
	}

	if it.named {
		sb.WriteByte(' ')
		sb.WriteString(it.name)
	}

	for _, a := range it.args {
		sb.WriteByte(' ')
		sb.WriteString(a)
	}

	if !it.block {
		sb.WriteByte('\n')

		return
	}

	if len(it.bases) > 0 {
		sb.WriteString(" : ")
		sb.WriteString(strings.Join(it.bases, ", "))
	}

	if len(it.children) == 0 {
		sb.WriteString(" { }\n")

		return
	}

	sb.WriteString("\n")
	sb.WriteString(pad)
	sb.WriteString("{\n")

	for _, c := range it.children {
		formatItem(sb, c, indent, depth+1)
	}

	sb.WriteString(pad)
	sb.WriteString("}\n")
}

// Dump writes an outline of it and its subtree, one line per item:
//
//	<indent><depth>: <name> +(<number of children>)
//
// Unnamed items are shown as <kind[number of arguments]>, the root as @root.
func (it *Item) Dump(w io.Writer) error {
	for item := range it.Walk() {
		depth := item.level - it.level

		name := item.name
		if !item.named {
			if item.IsRoot() {
				name = "@root"
			} else {
				name = fmt.Sprintf("<%s[%d]>", item.kind, len(item.args))
			}
		}

		_, err := fmt.Fprintf(w, "%s%d: %s +(%d)\n",
			strings.Repeat("  ", depth), depth, name, len(item.children))
		if err != nil {
			return err
		}
	}

	return nil
}

// FormatJSON writes it as JSON to the writer.
func (it *Item) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	return writeJSON(w, it, indent)
}

// FormatYAML writes it as YAML to the writer.
func (it *Item) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return writeYAML(ctx, w, it.ToMap(), indent)
}

// FormatItemsJSON writes a list of items as a JSON array.
func FormatItemsJSON(_ context.Context, w io.Writer, items []*Item, indent int) error {
	return writeJSON(w, itemsToMaps(items), indent)
}

// FormatItemsYAML writes a list of items as a YAML sequence.
func FormatItemsYAML(ctx context.Context, w io.Writer, items []*Item, indent int) error {
	return writeYAML(ctx, w, itemsToMaps(items), indent)
}

func writeJSON(w io.Writer, v any, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

func writeYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}
