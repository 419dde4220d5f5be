package gitsim

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
)

// ShortHashLen is the length of the abbreviated hashes shown to the learner.
const ShortHashLen = 7

// maxHashAttempts bounds retries of a custom HashFunc before falling back
// to DefaultHash.
const maxHashAttempts = 64

// HashFunc derives a short commit hash from a seed. attempt starts at 0 and
// grows each time the previous result collided with an existing commit.
type HashFunc func(seed string, attempt int) string

// DefaultHash hashes the seed like a git commit object and abbreviates it.
func DefaultHash(seed string, attempt int) string {
	payload := fmt.Sprintf("%s\nnonce %d\n", seed, attempt)
	return plumbing.ComputeHash(plumbing.CommitObject, []byte(payload)).String()[:ShortHashLen]
}

// nextHash returns a hash for c that no commit in repo already uses.
func (in *Interpreter) nextHash(repo *Repository, c Commit) string {
	used := make(map[string]bool, len(repo.Commits))
	for _, existing := range repo.Commits {
		used[existing.Hash] = true
	}
	seed := fmt.Sprintf("branch %s\nparents %v\ntime %d\nseq %d\n\n%s",
		c.Branch, c.Parents, c.Timestamp.UnixNano(), len(repo.Commits), c.Message)
	for attempt := range maxHashAttempts {
		if h := in.hash(seed, attempt); h != "" && !used[h] {
			return h
		}
	}
	// The configured HashFunc keeps colliding; DefaultHash always terminates
	// because its nonce changes the digest.
	for attempt := 0; ; attempt++ {
		if h := DefaultHash(seed, attempt); !used[h] {
			return h
		}
	}
}
