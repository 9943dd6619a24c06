package vcs

import (
	"sort"

	gogit "gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/plumbing"

	"github.com/sidkik/gitmover/pkg/errors"
)

// StatusReport summarizes the state of the backup repository.
type StatusReport struct {
	// Branch is the branch HEAD points to. It's empty if HEAD is detached.
	Branch string

	// OriginURL is the URL of `origin`, or empty if there is no `origin`.
	OriginURL string

	// Changes lists the files that differ from the last commit, sorted by
	// path.
	Changes []FileChange
}

// FileChange is a single path reported by `git status`.
type FileChange struct {
	Path string

	// Staging and Worktree use git's short status codes, such as `M` and `?`.
	Staging  string
	Worktree string
}

// Clean returns whether there's nothing to commit.
func (r StatusReport) Clean() bool {
	return len(r.Changes) == 0
}

// Status inspects the git repository at `dir`.
func Status(dir string) (StatusReport, error) {
	repo, err := plainOpen(dir)
	if err != nil {
		if err == gogit.ErrRepositoryNotExists {
			return StatusReport{}, errors.ErrNotRepository
		}
		return StatusReport{}, errors.WithContext(err, "open repository")
	}

	var report StatusReport
	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return StatusReport{}, errors.WithContext(err, "read HEAD")
	}
	if head.Type() == plumbing.SymbolicReference {
		report.Branch = head.Target().Short()
	}

	remote, err := repo.Remote(Remote)
	switch {
	case err == nil:
		if urls := remote.Config().URLs; len(urls) > 0 {
			report.OriginURL = urls[0]
		}
	case err != gogit.ErrRemoteNotFound:
		return StatusReport{}, errors.WithContext(err, "get remote")
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return StatusReport{}, errors.WithContext(err, "get worktree")
	}

	status, err := worktree.Status()
	if err != nil {
		return StatusReport{}, errors.WithContext(err, "get worktree status")
	}

	for path, fileStatus := range status {
		if fileStatus.Staging == gogit.Unmodified && fileStatus.Worktree == gogit.Unmodified {
			continue
		}
		report.Changes = append(report.Changes, FileChange{
			Path:     path,
			Staging:  string(fileStatus.Staging),
			Worktree: string(fileStatus.Worktree),
		})
	}
	sort.Slice(report.Changes, func(i, j int) bool {
		return report.Changes[i].Path < report.Changes[j].Path
	})
	return report, nil
}
