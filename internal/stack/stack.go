// Package stack holds the catalog of web-stack scaffolds and renders a
// project for a chosen stack from extracted concepts.
package stack

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/paperstack-cli/internal/manifest"
)

// ID identifies a technology stack by its display label.
type ID string

const (
	MERN    ID = "MERN Stack"
	MEAN    ID = "MEAN Stack"
	LAMP    ID = "LAMP Stack"
	Django  ID = "Django Stack"
	Spring  ID = "Spring Boot Stack"
	Laravel ID = "Laravel Stack"
	Flask   ID = "Flask Stack"
	Rails   ID = "Ruby on Rails Stack"
)

// Default is used whenever a label is not recognized.
const Default = MERN

// FileTemplate describes one generated file. Source names a template in the
// embedded catalog; Manifest builds a structured descriptor instead.
type FileTemplate struct {
	Path     string
	Source   string
	Manifest func(Data) *manifest.Document
}

// Step is one command of a run recipe, executed in Dir relative to the
// project root.
type Step struct {
	Dir     string   `json:"dir"`
	Command []string `json:"command"`
}

// Stack is one catalog entry.
type Stack struct {
	ID          ID
	Description string
	Aliases     []string
	Files       []FileTemplate
	Supplements []FileTemplate
	// Install runs to completion before Start is launched.
	Install []Step
	Start   Step
}

var (
	registry = map[ID]Stack{}
	order    []ID
)

// Register adds a stack to the catalog. Registering an ID twice replaces the
// earlier entry but keeps its listing position.
func Register(s Stack) {
	if _, ok := registry[s.ID]; !ok {
		order = append(order, s.ID)
	}
	registry[s.ID] = s
}

// All returns the stacks in registration order.
func All() []Stack {
	out := make([]Stack, 0, len(order))
	for _, id := range order {
		out = append(out, registry[id])
	}
	return out
}

// Get returns the stack registered under id.
func Get(id ID) (Stack, bool) {
	s, ok := registry[id]
	return s, ok
}

// Resolve maps a label to a stack. Matching is case-insensitive on the ID.
// Unknown or empty labels resolve to Default and report false.
func Resolve(label string) (Stack, bool) {
	norm := strings.TrimSpace(label)
	for _, id := range order {
		if strings.EqualFold(string(id), norm) {
			return registry[id], true
		}
	}
	return registry[Default], false
}

// Choose interprets free-form selection input: a menu number ("1".."8"), an
// alias such as "rails" or "spring boot", or a full stack label.
func Choose(input string) (ID, bool) {
	norm := strings.ToLower(strings.TrimSpace(input))
	if norm == "" {
		return "", false
	}
	if n, err := strconv.Atoi(norm); err == nil {
		if n >= 1 && n <= len(order) {
			return order[n-1], true
		}
		return "", false
	}
	for _, id := range order {
		s := registry[id]
		if norm == strings.ToLower(string(id)) {
			return id, true
		}
		for _, a := range s.Aliases {
			if norm == a {
				return id, true
			}
		}
	}
	return "", false
}

// Menu renders the numbered technology list shown before a selection.
func Menu() string {
	var b strings.Builder
	b.WriteString("Please choose the technology stack you want to use:\n\n")
	b.WriteString("TECHNOLOGY OPTIONS:\n")
	for i, s := range All() {
		b.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, s.ID, s.Description))
	}
	b.WriteString(fmt.Sprintf("\nPlease type the number (1-%d) or the name of your preferred technology stack.", len(order)))
	return b.String()
}
