package fetch

import (
	"net/url"
	"strings"
)

// Platform describes a site that commonly hosts CVs or profiles. Platforms
// only shape error messages and render hints; no URL is ever refused because
// of its platform.
type Platform struct {
	Match        string // substring matched against host + path
	Name         string
	ExportTip    string // how to obtain an uploadable file instead
	RequiresAuth bool
	Dynamic      bool   // content is rendered client-side
	WaitFor      string // CSS selector the renderer should wait for on dynamic pages
}

// GenericTip is used when no platform-specific advice exists
const GenericTip = "Please download the file and upload it directly."

var platforms = []Platform{
	{
		Match:        "linkedin.com",
		Name:         "LinkedIn",
		ExportTip:    `LinkedIn requires login to view full profiles. To get your CV: go to your profile → click "More" → "Save to PDF" → upload that PDF here.`,
		RequiresAuth: true,
		Dynamic:      true,
		WaitFor:      "main",
	},
	{
		Match:        "glassdoor.com",
		Name:         "Glassdoor",
		ExportTip:    "Download your résumé as PDF from Glassdoor and upload it directly.",
		RequiresAuth: true,
	},
	{
		Match:        "indeed.com/resume",
		Name:         "Indeed",
		ExportTip:    "Export your résumé as PDF from Indeed settings and upload it directly.",
		RequiresAuth: true,
	},
	{
		Match: "github.com",
		Name:  "GitHub",
	},
}

// LookupPlatform returns the platform matching target, if any
func LookupPlatform(target *url.URL) (Platform, bool) {
	if target == nil {
		return Platform{}, false
	}
	haystack := strings.ToLower(target.Host + target.Path)
	for _, p := range platforms {
		if strings.Contains(haystack, p.Match) {
			return p, true
		}
	}
	return Platform{}, false
}

// HintFor returns the remediation tip for target, falling back to GenericTip
func HintFor(target *url.URL) string {
	if p, ok := LookupPlatform(target); ok && p.ExportTip != "" {
		return p.ExportTip
	}
	return GenericTip
}

// IsDynamic reports whether target needs the extended render budget
func IsDynamic(target *url.URL) bool {
	p, ok := LookupPlatform(target)
	return ok && p.Dynamic
}
