package gitsim

import (
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// Pre-compiled regexes for branch name sanitization.
var (
	unsafeCharsRegex = regexp.MustCompile(`[^a-z0-9\-_/.]+`)
	multiDashRegex   = regexp.MustCompile(`-+`)
)

// ValidBranchName applies git's ref-name rules to a branch name: the
// refs/heads/ ref must pass git-check-ref-format, and the short name may not
// be HEAD, start with a dash or be a lone "@".
func ValidBranchName(s string) bool {
	if s == "" || s == "@" || s == "HEAD" || strings.HasPrefix(s, "-") {
		return false
	}
	return plumbing.NewBranchReferenceName(s).Validate() == nil
}

// SanitizeBranchName turns free text ("Fix Login Bug!") into a branch name
// suggestion ("fix-login-bug"). The result may still be empty.
func SanitizeBranchName(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = unsafeCharsRegex.ReplaceAllString(s, "")
	s = multiDashRegex.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-/")
	return s
}
