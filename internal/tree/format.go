package tree

import "fmt"

const idPrefixLength = 8

// FormatDuration renders a duration in the dashboard's display units:
// microseconds below 1ms, whole milliseconds below 1000ms, else seconds
// with one decimal.
func FormatDuration(durationMs float64) string {
	if durationMs < 1 {
		return fmt.Sprintf("%.0fµs", durationMs*1000)
	}
	if durationMs < 1000 {
		return fmt.Sprintf("%.0fms", durationMs)
	}
	return fmt.Sprintf("%.1fs", durationMs/1000)
}

// truncateID shortens an identifier to the display prefix length.
func truncateID(id string) string {
	if len(id) <= idPrefixLength {
		return id
	}
	return id[:idPrefixLength]
}
