package repl

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/paperstack-cli/internal/pipeline"
	"github.com/KaramelBytes/paperstack-cli/internal/project"
	"github.com/KaramelBytes/paperstack-cli/internal/stack"
	"github.com/KaramelBytes/paperstack-cli/internal/utils"
)

const abstractChars = 500

// Files shown first, in this order, before the remaining files.
var headline = []struct{ path, title string }{
	{"backend/server.js", "BACKEND SERVER.JS"},
	{"frontend/src/App.js", "FRONTEND APP.JS"},
	{"backend/package.json", "BACKEND PACKAGE.JSON"},
	{"frontend/package.json", "FRONTEND PACKAGE.JSON"},
}

// Report renders a finished generation as one text block.
func Report(res *pipeline.Result) string {
	var b strings.Builder
	c := res.Concepts

	b.WriteString("\nRESEARCH PAPER ANALYSIS COMPLETE!\n\n")
	b.WriteString("ABSTRACT:\n")
	b.WriteString(utils.TruncateRunes(res.Text, abstractChars))
	b.WriteString("...\n\n")

	b.WriteString("KEY INSIGHTS:\n")
	fmt.Fprintf(&b, "- Keywords: %s\n", strings.Join(c.TopKeywords(10), ", "))
	fmt.Fprintf(&b, "- Technical Terms: %s\n", strings.Join(c.TechnicalTerms, ", "))
	fmt.Fprintf(&b, "- Features: %s\n", strings.Join(c.Features, ", "))
	fmt.Fprintf(&b, "- Content Length: %d characters\n\n", c.ContentLength)

	b.WriteString("PROJECT STRUCTURE:\n")
	for _, p := range res.Project.Paths() {
		fmt.Fprintf(&b, "- %s\n", p)
	}

	b.WriteString("\n\nCODE IMPLEMENTATIONS:\n")
	shown := map[string]bool{}
	for _, h := range headline {
		shown[h.path] = true
		f, ok := res.Project.File(h.path)
		if !ok {
			continue
		}
		writeSection(&b, h.title, f)
	}
	for _, f := range res.Project.Files() {
		if shown[f.Path] {
			continue
		}
		writeSection(&b, strings.ToUpper(f.Path), f)
	}

	b.WriteString("\n\n✓ ZIP FILE CREATED SUCCESSFULLY!\n\n")
	fmt.Fprintf(&b, "ZIP FILE LOCATION: %s (%s)\n", res.Archive.Path, utils.HumanSize(res.Archive.Size))
	if res.PublishedURL != "" {
		fmt.Fprintf(&b, "PUBLISHED TO: %s\n", res.PublishedURL)
	}
	b.WriteString("\nTO USE YOUR PROJECT:\n")
	b.WriteString("1. Extract the ZIP file\n")
	b.WriteString("2. Open the extracted folder\n")
	step := 3
	if st, ok := stack.Get(res.Technology); ok {
		for _, s := range st.Install {
			fmt.Fprintf(&b, "%d. Run: %s\n", step, command(s))
			step++
		}
		fmt.Fprintf(&b, "%d. Start the application: %s\n", step, command(st.Start))
	}
	fmt.Fprintf(&b, "\nYour %s project is ready!\n", res.Technology)
	return b.String()
}

func writeSection(b *strings.Builder, title string, f project.File) {
	fmt.Fprintf(b, "\n=== %s ===\n", title)
	data, err := f.Bytes()
	if err != nil {
		fmt.Fprintf(b, "(unrenderable: %v)\n", err)
		return
	}
	b.Write(data)
	b.WriteString("\n")
}

func command(s stack.Step) string {
	cmd := strings.Join(s.Command, " ")
	if s.Dir != "" {
		return fmt.Sprintf("cd %s && %s", s.Dir, cmd)
	}
	return cmd
}
