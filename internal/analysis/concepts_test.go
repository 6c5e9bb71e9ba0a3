package analysis

import (
	"fmt"
	"strings"
	"testing"
)

func TestExtractFeaturesScenario(t *testing.T) {
	c := Extract("This system has user login and an admin dashboard.")
	want := []string{"User Management", "Authentication System", "Dashboard", "Admin Panel"}
	if fmt.Sprint(c.Features) != fmt.Sprint(want) {
		t.Fatalf("features=%v want %v", c.Features, want)
	}
	if got := fmt.Sprint(c.Keywords); got != "[This]" {
		t.Fatalf("keywords=%s", got)
	}
	if got := fmt.Sprint(c.TechnicalTerms); got != "[system user admin dashboard]" {
		t.Fatalf("terms=%s", got)
	}
}

func TestContentLengthCountsCharacters(t *testing.T) {
	for _, s := range []string{"", "abc", "héllo", strings.Repeat("Word ", 100)} {
		if got := Extract(s).ContentLength; got != len([]rune(s)) {
			t.Errorf("%q: content_length=%d", s, got)
		}
	}
}

func TestNoCapitalizedWordsMeansNoKeywords(t *testing.T) {
	c := Extract("all lowercase text, with numbers 123 and ACRONYMS only")
	if len(c.Keywords) != 0 {
		t.Fatalf("expected no keywords, got %v", c.Keywords)
	}
}

func TestAdminAddsOnlyAdminPanel(t *testing.T) {
	base := "plain text about nothing in particular"
	before := Extract(base).Features
	after := Extract(base + " admin").Features
	if len(before) != 0 {
		t.Fatalf("unexpected base features: %v", before)
	}
	if fmt.Sprint(after) != "[Admin Panel]" {
		t.Fatalf("features=%v", after)
	}
}

func TestKeywordsFirstTwentyInOrder(t *testing.T) {
	var words []string
	for i := 0; i < 30; i++ {
		words = append(words, "W"+strings.Repeat(string(rune('a'+i%26)), 1+i/26))
	}
	text := strings.Join(words, " ") + " " + words[0] + " " + words[3]
	c := Extract(text)
	if len(c.Keywords) != 20 {
		t.Fatalf("len=%d", len(c.Keywords))
	}
	for i := 0; i < 20; i++ {
		if c.Keywords[i] != words[i] {
			t.Fatalf("keyword[%d]=%q want %q", i, c.Keywords[i], words[i])
		}
	}
	if again := Extract(text); fmt.Sprint(again.Keywords) != fmt.Sprint(c.Keywords) {
		t.Fatalf("extraction not deterministic")
	}
}

func TestTechnicalTermsCaseInsensitiveWholeWord(t *testing.T) {
	c := Extract("Our api talks to a DATABASE; users are not matched but user is. Database again.")
	got := fmt.Sprint(c.TechnicalTerms)
	if got != "[api DATABASE user Database]" {
		t.Fatalf("terms=%s", got)
	}
}

func TestAnalyticsTriggeredByReport(t *testing.T) {
	c := Extract("quarterly Reports were generated")
	if fmt.Sprint(c.Features) != "[Analytics & Reporting]" {
		t.Fatalf("features=%v", c.Features)
	}
}

func TestMarkdownIncludesSections(t *testing.T) {
	md := Extract("Hello world").Markdown()
	for _, want := range []string{"[KEY INSIGHTS]", "Keywords: Hello", "Technical terms: (none)", "Content length: 11"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestKeywordsRespectUnicodeWordEdges(t *testing.T) {
	c := Extract("Café culture in Zürich and Señora Garcia met José at the Übersee_Lab and Data2 Hall")
	if got := fmt.Sprint(c.Keywords); got != "[Garcia Hall]" {
		t.Fatalf("keywords=%s", got)
	}
}

func TestTermsRespectUnicodeWordEdges(t *testing.T) {
	c := Extract("das userß konto, äadmin, systemé and a plain admin panel for the (API).")
	if got := fmt.Sprint(c.TechnicalTerms); got != "[admin API]" {
		t.Fatalf("terms=%s", got)
	}
}
