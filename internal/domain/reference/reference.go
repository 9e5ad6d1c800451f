// Package reference finds part numbers typed into a free-text question.
package reference

import "regexp"

var (
	distributorPattern  = regexp.MustCompile(`PS\d+`)
	manufacturerPattern = regexp.MustCompile(`[A-Z0-9]{5,}`)
)

// Refs holds the first match of each pattern. Empty means not found.
type Refs struct {
	Distributor  string
	Manufacturer string
}

// Any reports whether at least one reference was found.
func (r Refs) Any() bool {
	return r.Distributor != "" || r.Manufacturer != ""
}

// Detect scans query for a distributor number (PS followed by digits) and a manufacturer
// number (five or more uppercase letters or digits). Matching is case-sensitive and unvalidated,
// so a distributor number also satisfies the manufacturer pattern and uppercase words like
// "WHIRLPOOL" are picked up as manufacturer numbers.
func Detect(query string) Refs {
	return Refs{
		Distributor:  distributorPattern.FindString(query),
		Manufacturer: manufacturerPattern.FindString(query),
	}
}
