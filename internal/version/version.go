// Package version compares dotted numeric version strings such as
// browser build IDs ("120.0.6099.71") and release tags ("1.4.0").
package version

import (
	"strconv"
	"strings"
)

// Compare returns 1 if a > b, -1 if a < b and 0 if they are equal.
// Missing trailing components count as 0, so "2.1" equals "2.1.0".
// Components that are not decimal numbers also count as 0.
func Compare(a, b string) int {
	partsA := split(a)
	partsB := split(b)

	n := max(len(partsA), len(partsB))
	for i := range n {
		numA := component(partsA, i)
		numB := component(partsB, i)
		if numA > numB {
			return 1
		}
		if numA < numB {
			return -1
		}
	}
	return 0
}

// Newer reports whether candidate is strictly newer than current.
// A leading "v" on either side is ignored.
func Newer(candidate, current string) bool {
	return Compare(Trim(candidate), Trim(current)) > 0
}

// Trim strips surrounding whitespace and a leading "v" from a tag.
func Trim(tag string) string {
	tag = strings.TrimSpace(tag)
	return strings.TrimPrefix(strings.TrimPrefix(tag, "v"), "V")
}

func split(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return strings.Split(v, ".")
}

func component(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.Atoi(parts[i])
	if err != nil {
		return 0
	}
	return n
}
