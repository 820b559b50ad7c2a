package jobs

import (
	"fmt"
	"net/url"

	"wazivo/internal/types"
)

// DeepLinkSource tags generated search links in results
const DeepLinkSource = "Search link"

// Fallback link counts are kept within what the board list can supply.
const (
	minFallbackLinks = 5
	maxFallbackLinks = 7
)

type jobBoard struct {
	name  string
	build func(query, location string, remote bool) string
}

// jobBoards lists the boards used for deep links, most useful first
var jobBoards = []jobBoard{
	{"LinkedIn", func(q, loc string, remote bool) string {
		v := url.Values{"keywords": {q}}
		if remote {
			v.Set("f_WT", "2")
		} else if loc != "" {
			v.Set("location", loc)
		}
		return "https://www.linkedin.com/jobs/search/?" + v.Encode()
	}},
	{"Indeed", func(q, loc string, remote bool) string {
		v := url.Values{"q": {q}}
		if remote {
			v.Set("l", "Remote")
		} else if loc != "" {
			v.Set("l", loc)
		}
		return "https://www.indeed.com/jobs?" + v.Encode()
	}},
	{"Glassdoor", func(q, _ string, _ bool) string {
		return "https://www.glassdoor.com/Job/jobs.htm?" + url.Values{"sc.keyword": {q}}.Encode()
	}},
	{"RemoteOK", func(q, _ string, _ bool) string {
		return "https://remoteok.com/?" + url.Values{"search": {q}}.Encode()
	}},
	{"Wellfound", func(q, _ string, _ bool) string {
		return "https://wellfound.com/jobs?" + url.Values{"query": {q}}.Encode()
	}},
	{"Google Jobs", func(q, loc string, remote bool) string {
		terms := q + " jobs"
		if remote {
			terms += " remote"
		} else if loc != "" {
			terms += " in " + loc
		}
		return "https://www.google.com/search?" + url.Values{"q": {terms}, "ibp": {"htl;jobs"}}.Encode()
	}},
	{"Remotive", func(q, _ string, _ bool) string {
		return "https://remotive.com/remote-jobs?" + url.Values{"query": {q}}.Encode()
	}},
}

// DeepLinks builds up to n search links for query on distinct job boards
func DeepLinks(query, location string, n int) []types.JobListing {
	if n > len(jobBoards) {
		n = len(jobBoards)
	}
	if n <= 0 {
		return []types.JobListing{}
	}

	remote := isRemote(location)
	shownLocation := location
	if remote {
		shownLocation = "Remote"
	}
	title := query
	if title == "" {
		title = "Open positions"
	}

	links := make([]types.JobListing, 0, n)
	for _, board := range jobBoards[:n] {
		links = append(links, types.JobListing{
			Title:       fmt.Sprintf("%s jobs on %s", title, board.name),
			Company:     board.name,
			Location:    shownLocation,
			Remote:      remote,
			ApplyLink:   board.build(query, location, remote),
			Source:      DeepLinkSource,
			Description: fmt.Sprintf("Live %s search for %q", board.name, title),
		})
	}
	return links
}

// FallbackLinks is the full link set returned when no provider had results
func FallbackLinks(query, location string, n int) []types.JobListing {
	n = max(minFallbackLinks, min(n, maxFallbackLinks))
	return DeepLinks(query, location, n)
}
