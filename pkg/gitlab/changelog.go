package gitlab

import (
	"context"
	"fmt"
	"strings"
	"time"

	glab "gitlab.com/gitlab-org/api/client-go"
)

// MergeRequestLister is the slice of the merge-requests API the changelog
// generator needs.
type MergeRequestLister interface {
	ListProjectMergeRequests(pid any, opt *glab.ListProjectMergeRequestsOptions, options ...glab.RequestOptionFunc) ([]*glab.BasicMergeRequest, *glab.Response, error)
}

// ChangelogEntry is one rendered changelog line.
type ChangelogEntry struct {
	IID    int
	Title  string
	Author string
	Merged time.Time
}

// CollectChangelog lists the merge requests merged after since, newest
// first. A nil since collects the full project history.
func CollectChangelog(ctx context.Context, svc MergeRequestLister, pid any, since *time.Time) ([]ChangelogEntry, error) {
	opt := &glab.ListProjectMergeRequestsOptions{
		State:       glab.Ptr("merged"),
		OrderBy:     glab.Ptr("updated_at"),
		ListOptions: glab.ListOptions{PerPage: 100, Page: 1},
	}
	if since != nil {
		opt.UpdatedAfter = since
	}

	var entries []ChangelogEntry
	for {
		mrs, resp, err := svc.ListProjectMergeRequests(pid, opt, glab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("list merged merge requests: %w", err)
		}
		for _, mr := range mrs {
			if mr.MergedAt == nil {
				continue
			}
			if since != nil && !mr.MergedAt.After(*since) {
				continue
			}
			entry := ChangelogEntry{
				IID:    mr.IID,
				Title:  mr.Title,
				Merged: *mr.MergedAt,
			}
			if mr.Author != nil {
				entry.Author = mr.Author.Username
			}
			entries = append(entries, entry)
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return entries, nil
}

// RenderChangelog produces the markdown section for a set of entries.
func RenderChangelog(heading string, entries []ChangelogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", heading)
	if len(entries) == 0 {
		b.WriteString("No merged changes.\n")
		return b.String()
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "- !%d %s", e.IID, e.Title)
		if e.Author != "" {
			fmt.Fprintf(&b, " (@%s)", e.Author)
		}
		b.WriteString("\n")
	}
	return b.String()
}
