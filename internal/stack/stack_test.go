package stack_test

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/paperstack-cli/internal/analysis"
	"github.com/KaramelBytes/paperstack-cli/internal/stack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleConcepts = analysis.Extract("Deep Learning for user Dashboard analytics. The Model uses an API and a database.")

func TestCatalogListsEightStacksInMenuOrder(t *testing.T) {
	ids := []stack.ID{}
	for _, s := range stack.All() {
		ids = append(ids, s.ID)
		assert.NotEmpty(t, s.Description, s.ID)
		assert.NotEmpty(t, s.Start.Command, s.ID)
	}
	assert.Equal(t, []stack.ID{
		stack.MERN, stack.MEAN, stack.LAMP, stack.Django,
		stack.Spring, stack.Laravel, stack.Flask, stack.Rails,
	}, ids)
}

func TestEveryStackGenerates(t *testing.T) {
	for _, s := range stack.All() {
		p, err := s.Generate(sampleConcepts, "research-app")
		require.NoError(t, err, s.ID)
		assert.Equal(t, string(s.ID), p.Technology())
		assert.Contains(t, p.Paths(), "README.md", s.ID)
		for _, f := range append(p.Files(), p.Supplements()...) {
			b, err := f.Bytes()
			require.NoError(t, err, f.Path)
			assert.NotEmpty(t, b, f.Path)
			assert.NotContains(t, string(b), "[[", f.Path)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	for _, s := range stack.All() {
		a, err := s.Generate(sampleConcepts, "demo")
		require.NoError(t, err)
		b, err := s.Generate(sampleConcepts, "demo")
		require.NoError(t, err)
		require.Equal(t, a.AllPaths(), b.AllPaths())
		for _, p := range a.AllPaths() {
			fa, _ := a.File(p)
			fb, _ := b.File(p)
			ba, _ := fa.Bytes()
			bb, _ := fb.Bytes()
			assert.Equal(t, string(ba), string(bb), "%s %s", s.ID, p)
		}
	}
}

func TestUnknownTechnologyFallsBackToMERN(t *testing.T) {
	s, ok := stack.Resolve("Nonexistent Stack")
	assert.False(t, ok)
	assert.Equal(t, stack.MERN, s.ID)

	p, err := stack.Generate(sampleConcepts, "research-app", "Nonexistent Stack")
	require.NoError(t, err)
	mern, err := stack.Generate(sampleConcepts, "research-app", "MERN Stack")
	require.NoError(t, err)
	assert.Equal(t, mern.AllPaths(), p.AllPaths())
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	s, ok := stack.Resolve("  flask stack ")
	assert.True(t, ok)
	assert.Equal(t, stack.Flask, s.ID)
}

func TestFlaskPathSet(t *testing.T) {
	p, err := stack.Generate(sampleConcepts, "research-app", "Flask Stack")
	require.NoError(t, err)
	paths := p.AllPaths()
	assert.Contains(t, paths, "backend/app.py")
	assert.Contains(t, paths, "backend/requirements.txt")
	assert.Contains(t, paths, "README.md")
	for _, path := range paths {
		assert.NotContains(t, path, "models/User.js")
		assert.NotContains(t, path, "ResearchPaper.js")
	}
}

func TestMERNInterpolatesProjectName(t *testing.T) {
	p, err := stack.Generate(sampleConcepts, "paper-lab", "MERN Stack")
	require.NoError(t, err)

	server, ok := p.File("backend/server.js")
	require.True(t, ok)
	assert.Contains(t, server.Text, "mongodb://localhost:27017/paper-lab")
	assert.Contains(t, server.Text, "`Server is running on port ${PORT}`")

	pkg, ok := p.File("backend/package.json")
	require.True(t, ok)
	require.True(t, pkg.IsManifest())
	b, err := pkg.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"name": "paper-lab-backend"`)

	readme, ok := p.File("README.md")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(readme.Text, "# Paper-Lab - Research Paper Analysis Application"))
	assert.Contains(t, readme.Text, "- User Management\n")
	assert.Contains(t, readme.Text, "- Deep\n")
}

func TestSharedReadmeListsConcepts(t *testing.T) {
	p, err := stack.Generate(sampleConcepts, "research-app", "LAMP Stack")
	require.NoError(t, err)
	readme, ok := p.File("README.md")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(readme.Text, "# Research App - LAMP Stack\n"))
	assert.Contains(t, readme.Text, "- Keywords: Deep, Learning, Dashboard, The, Model\n")
	assert.Contains(t, readme.Text, "- Technical Terms: user, Dashboard, API, database\n")
	assert.Empty(t, p.Supplements(), "LAMP has no React frontend")
}

func TestAngularTemplateKeepsMustache(t *testing.T) {
	p, err := stack.Generate(sampleConcepts, "research-app", "MEAN Stack")
	require.NoError(t, err)
	html, ok := p.File("frontend/src/app.component.html")
	require.True(t, ok)
	assert.Contains(t, html.Text, "{{ title }}")
}

func TestReactStacksCarrySupplements(t *testing.T) {
	for _, id := range []stack.ID{stack.MERN, stack.Django, stack.Spring, stack.Flask, stack.Rails} {
		s, ok := stack.Get(id)
		require.True(t, ok)
		p, err := s.Generate(sampleConcepts, "x")
		require.NoError(t, err)
		assert.Len(t, p.Supplements(), 3, id)
	}
}

func TestChoose(t *testing.T) {
	cases := map[string]stack.ID{
		"1":                   stack.MERN,
		"5":                   stack.Spring,
		"8":                   stack.Rails,
		"MEAN":                stack.MEAN,
		" spring boot ":       stack.Spring,
		"spring":              stack.Spring,
		"Ruby on Rails":       stack.Rails,
		"rails":               stack.Rails,
		"laravel stack":       stack.Laravel,
		"Ruby on Rails Stack": stack.Rails,
	}
	for in, want := range cases {
		got, ok := stack.Choose(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "0", "9", "cobol", "hello"} {
		_, ok := stack.Choose(bad)
		assert.False(t, ok, bad)
	}
}

func TestMenuNumbersEveryStack(t *testing.T) {
	m := stack.Menu()
	assert.Contains(t, m, "1. MERN Stack (MongoDB, Express.js, React.js, Node.js)")
	assert.Contains(t, m, "8. Ruby on Rails Stack (Ruby, Rails, PostgreSQL, React)")
	assert.Contains(t, m, "(1-8)")
}
