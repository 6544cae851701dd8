// Package update asks the release feed whether a newer sdkmatch exists.
package update

import (
	"fmt"
	"strings"

	"github.com/tcnksm/go-latest"
)

const (
	releaseOwner = "sdkmatch"
	releaseRepo  = "sdkmatch"
)

// CheckForUpdate returns the latest released version, its release message
// and whether it is newer than current.
func CheckForUpdate(current string) (string, string, bool, error) {
	return checkForUpdateSource(current, &latest.GithubTag{
		Owner:             releaseOwner,
		Repository:        releaseRepo,
		FixVersionStrFunc: latest.DeleteFrontV(),
	})
}

func checkForUpdateSource(current string, src latest.Source) (string, string, bool, error) {
	current = strings.TrimPrefix(strings.TrimSpace(current), "v")
	if current == "" {
		return "", "", false, fmt.Errorf("current version is empty")
	}
	res, err := latest.Check(src, current)
	if err != nil {
		return "", "", false, err
	}
	notes := ""
	if res.Meta != nil {
		notes = res.Meta.Message
	}
	if !res.Outdated {
		notes = ""
	}
	return res.Current, notes, res.Outdated, nil
}
