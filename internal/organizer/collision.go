package organizer

import (
	"fmt"
	"path/filepath"
	"strings"

	"shoebox/internal/fileutil"
)

// CollisionPolicy decides what happens when a destination already exists.
type CollisionPolicy string

const (
	CollisionRename    CollisionPolicy = "rename"
	CollisionSkip      CollisionPolicy = "skip"
	CollisionOverwrite CollisionPolicy = "overwrite"
)

// ParseCollisionPolicy validates a policy name.
func ParseCollisionPolicy(value string) (CollisionPolicy, error) {
	switch CollisionPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", CollisionRename:
		return CollisionRename, nil
	case CollisionSkip:
		return CollisionSkip, nil
	case CollisionOverwrite:
		return CollisionOverwrite, nil
	default:
		return "", fmt.Errorf("unknown collision policy %q (want rename, skip, or overwrite)", value)
	}
}

// maxRenameAttempts bounds the _N suffix search.
const maxRenameAttempts = 10000

func isTaken(path string, claimed map[string]struct{}) (bool, error) {
	if _, ok := claimed[path]; ok {
		return true, nil
	}
	return fileutil.Exists(path)
}

// nextAvailablePath returns dir/stem_N.ext for the smallest N >= 1 that is
// neither on disk nor claimed earlier in the run.
func nextAvailablePath(dir, name string, claimed map[string]struct{}) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for attempt := 1; attempt <= maxRenameAttempts; attempt++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, attempt, ext))
		taken, err := isTaken(candidate, claimed)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("exhausted rename slots for %s in %s", name, dir)
}
