// Package fields holds the field level rules shared by the collections:
// slug generation, docker image references and http urls.
package fields

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptySlug is returned when a name has no characters left to build a slug from.
var ErrEmptySlug = errors.New("slug is empty after normalisation")

var (
	slugStrip   = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpace   = regexp.MustCompile(`\s+`)
	slugHyphens = regexp.MustCompile(`-+`)
	slugValid   = regexp.MustCompile(`^[a-z0-9-]+$`)

	// registry host[:port]/ then lowercase path components, then :tag and/or @sha256:digest.
	dockerImage = regexp.MustCompile(
		`^(?:[a-zA-Z0-9-]+(?:\.[a-zA-Z0-9-]+)*(?::[0-9]+)?/)?` +
			`[a-z0-9]+(?:(?:[._]|__|-+)[a-z0-9]+)*` +
			`(?:/[a-z0-9]+(?:(?:[._]|__|-+)[a-z0-9]+)*)*` +
			`(?::[A-Za-z0-9_][A-Za-z0-9_.-]{0,127})?` +
			`(?:@sha256:[a-f0-9]{64})?$`,
	)

	httpURL = regexp.MustCompile(`^https?://.+`)
)

// Slugify turns a name into a url slug: lowercase, only [a-z0-9-], single hyphens,
// no leading or trailing hyphen. Slugify(Slugify(x)) == Slugify(x).
func Slugify(name string) (string, error) {
	s := strings.ToLower(name)
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = slugSpace.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		return "", ErrEmptySlug
	}

	return s, nil
}

// ValidSlug reports whether s only uses lowercase letters, digits and hyphens.
func ValidSlug(s string) bool {
	return slugValid.MatchString(s)
}

// ValidDockerImage reports whether ref is a docker image reference such as
// nginx:alpine or registry.example.com:5000/team/app@sha256:....
func ValidDockerImage(ref string) bool {
	return dockerImage.MatchString(ref)
}

// ValidURL reports whether u is an http or https url.
func ValidURL(u string) bool {
	return httpURL.MatchString(u)
}
