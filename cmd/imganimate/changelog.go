package main

import (
	"fmt"
	"io"
	"strings"
)

// release is one entry of the changelog.
type release struct {
	Version string
	Notes   []string
}

// releases is ordered oldest first; the last entry is the current version.
var releases = []release{
	{Version: "1.0", Notes: []string{"Initial Release"}},
	{Version: "1.1", Notes: []string{
		"Added support for AAC encoding so that it works on iphone.",
		"Encoding now is outputted in the output video name.",
		`Added "--stacked" argument`,
		"Reformatted Output",
	}},
}

func latestVersion() string {
	return releases[len(releases)-1].Version
}

func releaseVersions() []string {
	versions := make([]string, 0, len(releases))
	for _, r := range releases {
		versions = append(versions, r.Version)
	}
	return versions
}

// writeChangelog prints the notes of one release, or of every release when
// which is "all".
func writeChangelog(w io.Writer, which string) error {
	which = strings.ToLower(strings.TrimSpace(which))

	var selected []release
	for _, r := range releases {
		if which == "all" || which == r.Version {
			selected = append(selected, r)
		}
	}
	if len(selected) == 0 {
		return fmt.Errorf("unknown release %q (want one of %s, all)", which, strings.Join(releaseVersions(), ", "))
	}

	for _, r := range selected {
		fmt.Fprintf(w, "Changelog for version %s:\n", r.Version)
		for _, line := range r.Notes {
			fmt.Fprintf(w, "- %s\n", line)
		}
		fmt.Fprintln(w)
	}
	return nil
}
