package ingestion

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

const defaultExtension = ".mov"

// slugTitle collapses whitespace runs into single hyphens. Nothing else is
// normalized: the slug only has to be safe inside an object key.
func slugTitle(title string) string {
	return whitespaceRuns.ReplaceAllString(title, "-")
}

// extensionOf returns the extension of the original filename, falling back to
// .mov for extensionless uploads.
func extensionOf(filename string) string {
	if ext := path.Ext(filename); ext != "" {
		return ext
	}
	return defaultExtension
}

// objectKeyFor derives the storage key for one upload. The millisecond
// timestamp prefix makes the key unique per call even when the same title is
// uploaded twice, so retries write new objects rather than overwriting.
func objectKeyFor(title, filename string, now time.Time) string {
	return fmt.Sprintf("uploads/%d-%s%s", now.UnixMilli(), slugTitle(title), extensionOf(filename))
}

// storedFilename is the logical filename recorded alongside the video: the
// slugged title with the upload's extension.
func storedFilename(title, filename string) string {
	return slugTitle(title) + extensionOf(filename)
}

// publicURLFor joins the public base URL with an object key.
func publicURLFor(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + key
}

// humanSize renders a byte count as binary megabytes with two decimals, the
// format the record store expects ("2.00 MB" for 2097152 bytes).
func humanSize(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/(1<<20))
}
