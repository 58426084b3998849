// Package version implements the release version scheme: a semver
// triple with a mandatory leading v and an optional timestamp suffix,
// as in v1.2.3 or v1.2.3-20240116120000.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// ErrInvalidFormat indicates a string that does not match the
// vMAJOR.MINOR.PATCH[-YYYYMMDDHHMMSS] scheme.
var ErrInvalidFormat = errors.New("invalid version format")

// Policy selects which component of a version a bump increments.
type Policy string

const (
	PolicyMajor     Policy = "major"
	PolicyMinor     Policy = "minor"
	PolicyPatch     Policy = "patch"
	PolicyTimestamp Policy = "timestamp"
)

// ParsePolicy converts a string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyMajor, PolicyMinor, PolicyPatch, PolicyTimestamp:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown version type %q (expected major, minor, patch or timestamp)", s)
	}
}

// TimestampLayout is the time format of the suffix appended by the
// timestamp policy.
const TimestampLayout = "20060102150405"

var timestampPattern = regexp.MustCompile(`^\d{14}$`)

// Version is a parsed release version.
type Version struct {
	Major     uint64
	Minor     uint64
	Patch     uint64
	Timestamp string
}

// Seed is the version assumed for a repository that has no releases yet.
var Seed = Version{}

// Parse converts a version string into a Version. The leading v is
// required and the only suffix accepted is a 14-digit timestamp.
func Parse(s string) (Version, error) {
	rest, ok := strings.CutPrefix(s, "v")
	if !ok {
		return Version{}, fmt.Errorf("%w: %q is missing the leading v", ErrInvalidFormat, s)
	}

	sv, err := semver.StrictNewVersion(rest)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrInvalidFormat, s, err)
	}
	if sv.Metadata() != "" {
		return Version{}, fmt.Errorf("%w: %q carries build metadata", ErrInvalidFormat, s)
	}
	if suffix := sv.Prerelease(); suffix != "" && !timestampPattern.MatchString(suffix) {
		return Version{}, fmt.Errorf("%w: suffix of %q is not a %s timestamp", ErrInvalidFormat, s, "YYYYMMDDHHMMSS")
	}

	return Version{
		Major:     sv.Major(),
		Minor:     sv.Minor(),
		Patch:     sv.Patch(),
		Timestamp: sv.Prerelease(),
	}, nil
}

// Bump returns the next version under the given policy. The major,
// minor and patch policies reset the lower components and drop any
// timestamp suffix; the timestamp policy keeps the triple and stamps
// the suffix from now in UTC.
func (v Version) Bump(policy Policy, now time.Time) Version {
	switch policy {
	case PolicyMajor:
		return Version{Major: v.Major + 1}
	case PolicyMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	case PolicyPatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	default:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch, Timestamp: now.UTC().Format(TimestampLayout)}
	}
}

// String renders the version with its leading v, so that
// Parse(v.String()) round-trips.
func (v Version) String() string {
	s := fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Timestamp != "" {
		s += "-" + v.Timestamp
	}
	return s
}
