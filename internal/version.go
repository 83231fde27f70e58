package internal

import "fmt"

var (
	commitVersion string = "v0.1.0"
	commitDate    string
)

// GetVersion returns the version and the commit date if set at build time.
func GetVersion() string {
	if commitDate == "" {
		return commitVersion
	}
	return fmt.Sprintf("%s, date: %s", commitVersion, commitDate)
}
