package analysis

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/KaramelBytes/paperstack-cli/internal/utils"
)

// Both patterns are whole-word matches; word edges are checked by wholeWords
// because RE2's \b only knows ASCII word characters.
var (
	keywordRe = regexp.MustCompile(`[A-Z][a-z]+`)
	termRe    = regexp.MustCompile(`(?i)(?:API|database|authentication|user|admin|dashboard|analytics|reporting|management|system)`)
)

// maxKeywords caps the distinct keywords kept.
const maxKeywords = 20

// featureRule emits Label when any trigger is a substring of the lowercased text.
type featureRule struct {
	Label    string
	Triggers []string
}

// Order here is the order features are reported in.
var featureRules = []featureRule{
	{Label: "User Management", Triggers: []string{"user"}},
	{Label: "Authentication System", Triggers: []string{"authentication", "login"}},
	{Label: "Dashboard", Triggers: []string{"dashboard"}},
	{Label: "Analytics & Reporting", Triggers: []string{"analytics", "report"}},
	{Label: "Admin Panel", Triggers: []string{"admin"}},
}

// Concepts is the keyword/term/feature summary of a document.
type Concepts struct {
	Keywords       []string `json:"keywords"`
	TechnicalTerms []string `json:"technical_terms"`
	Features       []string `json:"features"`
	ContentLength  int      `json:"content_length"`
}

// Extract scans text for capitalized keywords, vocabulary terms and feature
// triggers. Keywords keep the first 20 distinct matches in order of first
// appearance.
func Extract(text string) Concepts {
	keywords := uniqueInOrder(wholeWords(keywordRe, text))
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return Concepts{
		Keywords:       keywords,
		TechnicalTerms: uniqueInOrder(wholeWords(termRe, text)),
		Features:       deriveFeatures(text),
		ContentLength:  utils.CountRunes(text),
	}
}

// wholeWords returns the matches of re not touching a word rune on either side.
func wholeWords(re *regexp.Regexp, text string) []string {
	var out []string
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if before, _ := utf8.DecodeLastRuneInString(text[:loc[0]]); loc[0] > 0 && isWordRune(before) {
			continue
		}
		if after, _ := utf8.DecodeRuneInString(text[loc[1]:]); loc[1] < len(text) && isWordRune(after) {
			continue
		}
		out = append(out, text[loc[0]:loc[1]])
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func deriveFeatures(text string) []string {
	lower := strings.ToLower(text)
	out := []string{}
	for _, r := range featureRules {
		for _, trig := range r.Triggers {
			if strings.Contains(lower, trig) {
				out = append(out, r.Label)
				break
			}
		}
	}
	return out
}

func uniqueInOrder(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// TopKeywords returns at most n keywords.
func (c Concepts) TopKeywords(n int) []string {
	return head(c.Keywords, n)
}

func head(in []string, n int) []string {
	if n < 0 || n >= len(in) {
		return in
	}
	return in[:n]
}

// Markdown renders the key insights block shown by the REPL and CLI.
func (c Concepts) Markdown() string {
	var b strings.Builder
	b.WriteString("[KEY INSIGHTS]\n")
	b.WriteString(fmt.Sprintf("- Keywords: %s\n", joinOrNone(c.TopKeywords(10))))
	b.WriteString(fmt.Sprintf("- Technical terms: %s\n", joinOrNone(c.TechnicalTerms)))
	b.WriteString(fmt.Sprintf("- Features: %s\n", joinOrNone(c.Features)))
	b.WriteString(fmt.Sprintf("- Content length: %d characters\n", c.ContentLength))
	return b.String()
}

func joinOrNone(in []string) string {
	if len(in) == 0 {
		return "(none)"
	}
	return strings.Join(in, ", ")
}
