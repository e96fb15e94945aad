package id

import (
	"crypto/rand"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time and safe for use as DynamoDB partition keys.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// achievementSpace namespaces the name-based IDs of unlock notifications.
var achievementSpace = uuid.MustParse("6f1c7e0a-3b7d-4c52-9a41-2d8e5b0f9c13")

// Derived returns a stable UUIDv5 for the given parts. The same parts always
// yield the same ID, which lets a retried write land on the same item.
func Derived(parts ...string) string {
	name := ""
	for i, p := range parts {
		if i > 0 {
			name += "\x00"
		}
		name += p
	}
	return uuid.NewSHA1(achievementSpace, []byte(name)).String()
}
