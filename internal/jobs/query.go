package jobs

import (
	"regexp"
	"strings"

	"wazivo/internal/types"
)

// titleSeparators end the job-title part of a headline such as
// "Engineer at Google" or "Developer | Freelance".
var titleSeparators = regexp.MustCompile(`(?i)\s+(?:at|@|for|with)\s+|\s*[|—–,(]\s*|\s+-\s+`)

// fillerWords are self-descriptions that narrow a job search to nothing
var fillerWords = map[string]bool{
	"experienced":      true,
	"seasoned":         true,
	"passionate":       true,
	"motivated":        true,
	"self-motivated":   true,
	"highly":           true,
	"dedicated":        true,
	"skilled":          true,
	"talented":         true,
	"dynamic":          true,
	"accomplished":     true,
	"proven":           true,
	"hardworking":      true,
	"hard-working":     true,
	"enthusiastic":     true,
	"innovative":       true,
	"creative":         true,
	"results-driven":   true,
	"detail-oriented":  true,
	"aspiring":         true,
	"versatile":        true,
	"certified":        true,
	"freelance":        true,
	"independent":      true,
	"professional":     true,
	"expert":           true,
	"dependable":       true,
	"resourceful":      true,
	"goal-oriented":    true,
	"customer-focused": true,
}

// maxSkillTerms bounds the skills used when no title is available
const maxSkillTerms = 3

// CleanTitle reduces a CV headline to a searchable job title: company names
// and anything after a separator are dropped, as are filler adjectives.
// "Experienced Software Engineer at Acme Corp" becomes "Software Engineer".
func CleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if loc := titleSeparators.FindStringIndex(title); loc != nil && loc[0] > 0 {
		title = title[:loc[0]]
	}

	words := strings.Fields(title)
	kept := words[:0]
	for _, w := range words {
		if fillerWords[strings.ToLower(strings.Trim(w, ".,;:!"))] {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// Queries is the search plan derived from an analysis
type Queries struct {
	Primary     string
	Alternative []string
	Location    string
}

// All returns the queries to search in order: primary first
func (q Queries) All() []string {
	if q.Primary == "" {
		return nil
	}
	return append([]string{q.Primary}, q.Alternative...)
}

// BuildQueries derives the primary query, at most one alternative and the
// location. The model's suggested title wins over the raw CV title; key
// skills are the last resort.
func BuildQueries(summary types.CandidateSummary, hints types.JobSearchHints, defaultLocation string) Queries {
	primary := CleanTitle(hints.SuggestedTitle)
	if primary == "" {
		primary = CleanTitle(summary.Title)
	}
	if primary == "" {
		primary = skillsQuery(summary.KeySkills)
	}

	var alternative []string
	for _, alt := range hints.AlternativeTitles {
		cleaned := CleanTitle(alt)
		if cleaned == "" || strings.EqualFold(cleaned, primary) {
			continue
		}
		alternative = append(alternative, cleaned)
		break
	}

	location := firstNonBlank(hints.Location, summary.Location, defaultLocation)

	return Queries{
		Primary:     primary,
		Alternative: alternative,
		Location:    location,
	}
}

func skillsQuery(skills []string) string {
	var terms []string
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			terms = append(terms, s)
		}
		if len(terms) == maxSkillTerms {
			break
		}
	}
	return strings.Join(terms, " ")
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// isRemote reports whether location asks for remote work
func isRemote(location string) bool {
	l := strings.ToLower(location)
	return l == "" || strings.Contains(l, "remote") || l == "anywhere" || l == "worldwide"
}
