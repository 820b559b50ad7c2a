package jobs

import (
	"strings"
	"unicode"

	"wazivo/internal/types"
)

// NormalizeJobKey is the identity of a listing: title and company lowercased
// with everything except letters and digits removed. Letters of any script
// count, so Arabic listings keep distinct keys.
func NormalizeJobKey(title, company string) string {
	return normalizeKeyPart(title) + "|" + normalizeKeyPart(company)
}

func normalizeKeyPart(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Dedup drops listings whose key was already seen. The first occurrence wins
// and order is preserved, so running it twice changes nothing.
func Dedup(listings []types.JobListing) []types.JobListing {
	seen := make(map[string]struct{}, len(listings))
	out := make([]types.JobListing, 0, len(listings))
	for _, job := range listings {
		key := NormalizeJobKey(job.Title, job.Company)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, job)
	}
	return out
}

// usable reports whether a provider listing has enough to be shown
func usable(job types.JobListing) bool {
	return strings.TrimFunc(job.Title, unicode.IsSpace) != "" && job.ApplyLink != ""
}
