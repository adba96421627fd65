package keys

import (
	"strings"

	"github.com/gosimple/slug"
)

// FlavorKey produces the canonical key for a flavor role name, so
// "Code Red", "code red" and " CODE-RED " all map to "code-red".
func FlavorKey(name string) string {
	return slug.Make(strings.TrimSpace(name))
}

// PairKey identifies an ordered challenger/target pair inside a channel.
// Callers use it to keep at most one live duel per pair and location.
func PairKey(channelID, challengerID, targetID string) string {
	return strings.Join([]string{channelID, challengerID, targetID}, "|")
}
