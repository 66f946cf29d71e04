package profile

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConstraintFiles returns the ordered sequence of constraint files present
// in the profile directory, least specific first. The full candidate order
// is:
//
//	pins.yaml
//	pins-py<VERSION>.yaml
//	pins-<PLATFORM>.yaml
//	pins-<PLATFORM>-py<VERSION>.yaml
//
// A platform-only qualifier outranks a version-only qualifier. Candidates
// whose qualifier is not supplied are skipped, and only existing regular
// files are returned. The sequence is recomputed on every call, never
// cached, so it always reflects the current directory contents.
func (p *Profile) ConstraintFiles(pythonVersion, platformTag string) []string {
	var names []string

	names = append(names, "pins.yaml")
	if pythonVersion != "" {
		names = append(names, fmt.Sprintf("pins-py%s.yaml", pythonVersion))
	}
	if platformTag != "" {
		names = append(names, fmt.Sprintf("pins-%s.yaml", platformTag))
	}
	if platformTag != "" && pythonVersion != "" {
		names = append(names, fmt.Sprintf("pins-%s-py%s.yaml", platformTag, pythonVersion))
	}

	var files []string
	for _, name := range names {
		path := filepath.Join(p.Path, name)
		stat, err := os.Stat(path)
		if err != nil || !stat.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	return files
}
