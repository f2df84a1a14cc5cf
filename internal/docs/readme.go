package docs

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/template"

	"server-warden/internal/command"
	"server-warden/internal/middleware"
	"server-warden/pkg/cmd"

	"github.com/samber/lo"
)

// CommandSections renders the registered commands as markdown, one section
// per category, categories and commands sorted by name.
func CommandSections(registry *cmd.Registry, prefix string) string {
	byCategory := lo.GroupBy(registry.GetAll(), func(c cmd.Command) string {
		if meta, ok := cmd.Root(c).(command.DiscordMeta); ok {
			return meta.Category()
		}
		return "Other"
	})
	categories := lo.Keys(byCategory)
	slices.Sort(categories)

	var buf strings.Builder
	for i, cat := range categories {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "### %s\n\n", cat)
		for _, c := range byCategory[cat] {
			usage := prefix + c.Name()
			if d, ok := cmd.Root(c).(cmd.Documented); ok && d.Syntax() != "" {
				usage += " " + d.Syntax()
			}
			fmt.Fprintf(&buf, "- **`%s`** %s", usage, c.Description())
			if meta, ok := cmd.Root(c).(command.DiscordMeta); ok && len(meta.UserPermissions()) > 0 {
				perms := lo.Map(meta.UserPermissions(), func(p int64, _ int) string { return middleware.PermissionName(p) })
				fmt.Fprintf(&buf, " (requires %s)", strings.Join(perms, ", "))
			}
			buf.WriteString("\n")
		}
	}
	return buf.String()
}

// WriteReadme executes tmpl with the command sections as .CommandSections.
func WriteReadme(w io.Writer, tmpl string, registry *cmd.Registry, prefix string) error {
	t, err := template.New("readme").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("parse readme template: %w", err)
	}
	return t.Execute(w, struct{ CommandSections string }{CommandSections(registry, prefix)})
}
