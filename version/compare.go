package version

import (
	"cmp"
	"fmt"
	"strings"
)

type semver [3]int

func parse(s string) (semver, error) {
	core, _, _ := strings.Cut(strings.TrimPrefix(strings.TrimSpace(s), "v"), "-")

	var v semver
	if _, err := fmt.Sscanf(core, "%d.%d.%d", &v[0], &v[1], &v[2]); err != nil {
		return v, fmt.Errorf("malformed version %q: %w", s, err)
	}
	return v, nil
}

// Compare orders two "major.minor.patch" versions, ignoring a leading "v"
// and any pre-release suffix. It returns 1 if a > b, -1 if a < b and 0 otherwise.
func Compare(a, b string) (int, error) {
	av, err := parse(a)
	if err != nil {
		return 0, err
	}
	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	for i := range av {
		if c := cmp.Compare(av[i], bv[i]); c != 0 {
			return c, nil
		}
	}
	return 0, nil
}
