package export

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ParseFormat accepts md, markdown, json, yaml and yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown", "":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want md, json or yaml)", s)
}

// Write encodes the subtree under root to w.
func Write(w io.Writer, root *Node, format Format, title string, now time.Time) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(root), "encode json")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(root); err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(root, title, now))
		return err
	}
	return fmt.Errorf("unknown export format %q", format)
}

// WriteFile writes the export to path.
func WriteFile(path string, root *Node, format Format, title string, now time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create export file")
	}
	if err := Write(f, root, format, title, now); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Markdown renders a report: counts per kind, a mermaid graph of the
// hierarchy and a nested outline.
func Markdown(root *Node, title string, now time.Time) string {
	var sb strings.Builder
	if title == "" {
		title = root.Label
	}

	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "Generated: %s\n\n", now.Format(time.RFC1123))

	sb.WriteString("## Summary\n\n")
	counts := Count(root)
	total := 0
	kinds := make([]string, 0, len(counts))
	for k, n := range counts {
		kinds = append(kinds, k)
		total += n
	}
	sort.Strings(kinds)
	fmt.Fprintf(&sb, "- **Root**: %s (`%s`)\n", root.Label, root.ID)
	fmt.Fprintf(&sb, "- **Total**: %d\n", total)
	for _, k := range kinds {
		fmt.Fprintf(&sb, "- **%s**: %d\n", k, counts[k])
	}
	sb.WriteString("\n")

	sb.WriteString("## Hierarchy Graph\n\n")
	sb.WriteString("```mermaid\ngraph TD\n")
	ids := map[*Node]string{}
	var define func(n *Node)
	define = func(n *Node) {
		id := fmt.Sprintf("n%d", len(ids))
		ids[n] = id
		fmt.Fprintf(&sb, "    %s[\"%s <br/> %s\"]\n", id, mermaidLabel(n.Kind), mermaidLabel(n.Label))
		for _, c := range n.Children {
			define(c)
			fmt.Fprintf(&sb, "    %s --> %s\n", id, ids[c])
		}
	}
	define(root)
	sb.WriteString("```\n\n")

	sb.WriteString("## Outline\n\n")
	var outline func(n *Node, depth int)
	outline = func(n *Node, depth int) {
		fmt.Fprintf(&sb, "%s- **%s** %s `%s`\n", strings.Repeat("  ", depth), n.Kind, n.Label, n.ID)
		for _, c := range n.Children {
			outline(c, depth+1)
		}
	}
	outline(root, 0)
	return sb.String()
}

func mermaidLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.NewReplacer("[", "", "]", "", "(", "", ")", "").Replace(s)
	return runewidth.Truncate(s, 30, "...")
}
