package vcs

import (
	"context"
	"regexp"

	goversion "github.com/hashicorp/go-version"
	log "github.com/sirupsen/logrus"

	"github.com/sidkik/gitmover/pkg/errors"
)

// MinimumGitVersion is the oldest git release gitmover is tested against.
var MinimumGitVersion = goversion.Must(goversion.NewVersion("2.0.0"))

// Matches the version in output such as `git version 2.39.2 (Apple Git-143)`
// or `git version 2.34.1.windows.1`.
var gitVersionRegex = regexp.MustCompile(`git version (\d+(?:\.\d+){0,2})`)

// GitVersion returns the version of the installed git.
func GitVersion(ctx context.Context, git Runner) (*goversion.Version, error) {
	res, err := run(ctx, git, "--version")
	if err != nil {
		return nil, errors.WithContext(err, "get git version")
	}
	return parseGitVersion(string(res.Stdout))
}

func parseGitVersion(output string) (*goversion.Version, error) {
	match := gitVersionRegex.FindStringSubmatch(output)
	if match == nil {
		return nil, errors.NewFriendlyError("Failed to parse git version from %q", output)
	}

	version, err := goversion.NewVersion(match[1])
	if err != nil {
		return nil, errors.WithContext(err, "parse version")
	}
	return version, nil
}

// CheckGitVersion warns if the installed git is older than
// MinimumGitVersion. Failing to detect the version isn't an error, since the
// git commands that follow will fail anyways if git is missing.
func CheckGitVersion(ctx context.Context, git Runner) {
	version, err := GitVersion(ctx, git)
	if err != nil {
		log.WithError(err).Debug("Failed to check git version")
		return
	}

	if version.LessThan(MinimumGitVersion) {
		log.WithFields(log.Fields{
			"installed": version.String(),
			"minimum":   MinimumGitVersion.String(),
		}).Warn("The installed version of git is older than the minimum supported version")
	}
}
