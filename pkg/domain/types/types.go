package types

import "regexp"

// BranchName is a git branch name without the refs/heads/ prefix.
type BranchName string

func (x BranchName) String() string { return string(x) }

// HeadRef returns the short ref used for lookups, e.g. heads/release-1.2.4.
func (x BranchName) HeadRef() string { return "heads/" + string(x) }

// FullRef returns the fully qualified ref used for creation.
func (x BranchName) FullRef() string { return "refs/heads/" + string(x) }

// CommitSHA represents a git commit hash.
type CommitSHA string

func (x CommitSHA) String() string { return string(x) }

// Short returns the first 7 characters of the commit SHA.
func (x CommitSHA) Short() string {
	if len(x) > 7 {
		return string(x[:7])
	}
	return string(x)
}

var fullSHA = regexp.MustCompile(`^[0-9a-f]{40}$`)

// IsFull reports whether x looks like a complete SHA-1 object name.
func (x CommitSHA) IsFull() bool { return fullSHA.MatchString(string(x)) }

// Version is a semantic version string without any tag prefix, e.g. 1.2.4.
type Version string

func (x Version) String() string { return string(x) }

// RunID identifies a single pipeline invocation in logs.
type RunID string
