// Package version exposes the git metadata stamped into the kvconf binary.
package version

import (
	_ "embed"
	"fmt"
	"runtime"
	"strings"
)

//go:generate sh -c "printf %s $(git rev-parse HEAD) > commit.txt"
//go:generate sh -c "printf %s $(git rev-parse --abbrev-ref HEAD) > branch.txt"
//go:generate sh -c "printf %s $(git describe --tags --abbrev=0 2>/dev/null || echo none) > tag.txt"
//go:generate sh -c "git diff-index --quiet HEAD -- && echo clean > dirty.txt || echo dirty > dirty.txt"

//go:embed commit.txt
var commit string

//go:embed branch.txt
var branch string

//go:embed tag.txt
var tag string

//go:embed dirty.txt
var dirty string

// Info describes the build
type Info struct {
	Commit    string
	Branch    string
	Tag       string
	Dirty     bool
	GoVersion string
}

var info = Info{
	Commit:    strings.TrimSpace(commit),
	Branch:    strings.TrimSpace(branch),
	Tag:       strings.TrimSpace(tag),
	Dirty:     strings.TrimSpace(dirty) == "dirty",
	GoVersion: runtime.Version(),
}

// Get returns a copy of the build info.
func Get() Info {
	return info
}

// Short renders "tag (commit)" with a "-dirty" suffix on modified trees.
func (i Info) Short() string {
	commit := i.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	s := fmt.Sprintf("%s (%s)", i.Tag, commit)
	if i.Dirty {
		s += "-dirty"
	}
	return s
}
