package treefile

import (
	"fmt"
	"strings"
	"time"
)

const (
	filePrefix = "decision_tree_"
	fileSuffix = "_session.md"

	dateLayout = "20060102"
)

// Filename returns the tree file name for the given date, e.g.
// "decision_tree_20250825_session.md". The project is encoded by the
// directory the file lives in, one directory per project.
func Filename(date time.Time) string {
	return filePrefix + date.Format(dateLayout) + fileSuffix
}

// SessionID derives the session identifier for a project and date,
// e.g. "opsbrain-20250825".
func SessionID(project string, date time.Time) string {
	return fmt.Sprintf("%s-%s", project, date.Format(dateLayout))
}

// IsTreeFile reports whether name looks like a dated tree file.
func IsTreeFile(name string) bool {
	_, ok := ParseFilename(name)
	return ok
}

// ParseFilename extracts the date encoded in a tree file name. Returns
// ok=false for names that are not tree files.
func ParseFilename(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return time.Time{}, false
	}

	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	date, err := time.Parse(dateLayout, stamp)
	if err != nil {
		return time.Time{}, false
	}

	return date, true
}
