// Package docs renders the command reference in Markdown.
package docs

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/keshon/flowbot/pkg/cmd"
)

type section struct {
	Category string
	Commands []entry
}

type entry struct {
	Usage       string
	Description string
	Aliases     string
	Notes       string
	Subcommands []entry
}

var page = template.Must(template.New("commands").Parse(`# Commands

Default prefix: ` + "`{{.Prefix}}`" + `
{{range .Sections}}
### {{.Category}}
{{range .Commands}}
- **{{.Usage}}** {{.Description}}{{if .Aliases}} (aliases: {{.Aliases}}){{end}}{{if .Notes}} _{{.Notes}}_{{end}}
{{- range .Subcommands}}
  - **{{.Usage}}** {{.Description}}{{if .Aliases}} (aliases: {{.Aliases}}){{end}}
{{- end}}
{{- end}}
{{end}}`))

// Render writes the visible commands of reg grouped by category. Categories
// are ordered by weight (lower first), then by name.
func Render(w io.Writer, reg *cmd.Registry, prefix string, weights map[string]int) error {
	names, byCategory := reg.Categories()
	sort.SliceStable(names, func(i, j int) bool {
		wi, wj := weights[names[i]], weights[names[j]]
		if wi == wj {
			return names[i] < names[j]
		}
		return wi < wj
	})

	var sections []section
	for _, cat := range names {
		s := section{Category: cat}
		for _, c := range byCategory[cat] {
			s.Commands = append(s.Commands, describe(c, prefix))
		}
		sections = append(sections, s)
	}
	return page.Execute(w, struct {
		Prefix   string
		Sections []section
	}{prefix, sections})
}

// WriteFile renders into path, replacing it.
func WriteFile(path string, reg *cmd.Registry, prefix string, weights map[string]int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Render(f, reg, prefix, weights); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

func describe(c cmd.Command, prefix string) entry {
	info := c.Info()
	e := entry{
		Usage:       prefix + info.Name,
		Description: info.Description,
		Aliases:     strings.Join(info.Aliases, ", "),
		Notes:       notes(info),
	}
	if g, ok := cmd.Root(c).(*cmd.Group); ok {
		for _, sub := range g.Commands() {
			si := sub.Info()
			e.Subcommands = append(e.Subcommands, entry{
				Usage:       prefix + info.Name + " " + si.Name,
				Description: si.Description,
				Aliases:     strings.Join(si.Aliases, ", "),
			})
		}
	}
	return e
}

func notes(info *cmd.Info) string {
	var n []string
	if info.OwnerOnly {
		n = append(n, "owner only")
	}
	if !info.GuildOnly {
		n = append(n, "works in DMs")
	}
	if info.UserPermissions != 0 {
		n = append(n, "needs "+info.UserPermissions.String())
	}
	return strings.Join(n, "; ")
}
