package youtube

import "strings"

const (
	channelIDPrefix = "UC"
	channelIDLength = 24
)

// ValidateChannelID reports whether id has the shape of a YouTube channel ID.
func ValidateChannelID(id string) bool {
	return strings.HasPrefix(id, channelIDPrefix) && len(id) == channelIDLength
}

// ParseChannelIDs splits a newline or comma separated list, dropping blanks.
// Ids are not validated here.
func ParseChannelIDs(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})

	ids := make([]string, 0, len(fields))
	for _, field := range fields {
		if id := strings.TrimSpace(field); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
