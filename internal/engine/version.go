package engine

import "fmt"

// Version selects the language level a program is parsed against.
type Version struct {
	Major, Minor int
}

var (
	V1_0 = Version{1, 0}
	V1_1 = Version{1, 1}

	// DefaultVersion is used when no version is configured.
	DefaultVersion = V1_1
)

// ParseVersion accepts "1.0" or "1.1".
func ParseVersion(s string) (Version, error) {
	switch s {
	case "1.0":
		return V1_0, nil
	case "1.1":
		return V1_1, nil
	}
	return Version{}, fmt.Errorf("unsupported language version %q", s)
}

// AtLeast reports whether v is min or newer.
func (v Version) AtLeast(min Version) bool {
	if v.Major != min.Major {
		return v.Major > min.Major
	}
	return v.Minor >= min.Minor
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}
