package utils

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/scythe504/undercover-backend/internal"
)

// RoomCodeChars excludes characters that are easy to misread (0/O, 1/I).
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// =============================================================================
// IDENTITY
// =============================================================================

// GenerateID returns a new connection identity.
func GenerateID() string {
	return uuid.NewString()
}

// GenerateRoomCode creates a random room code of internal.RoomCodeLength characters.
func GenerateRoomCode() string {
	code := make([]byte, internal.RoomCodeLength)
	for i := range code {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(RoomCodeChars))))
		if err != nil {
			// fallback to math/rand if crypto fails
			code[i] = RoomCodeChars[rand.IntN(len(RoomCodeChars))]
			continue
		}
		code[i] = RoomCodeChars[n.Int64()]
	}
	return string(code)
}

// NormalizeRoomCode makes user-typed codes comparable to generated ones.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeName trims a display name and reports whether it is usable.
func NormalizeName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	return name, n > 0 && n <= internal.MaxNameLength
}

// =============================================================================
// RANDOM SELECTION
// =============================================================================

// SampleIndices returns k distinct indices drawn uniformly from [0, n) using a
// partial Fisher-Yates shuffle. k is clamped to [0, n].
func SampleIndices(n, k int, intn func(int) int) []int {
	if intn == nil {
		intn = rand.IntN
	}
	k = Clamp(k, 0, n)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

// PickRandom returns a uniformly chosen element, or the zero value for an empty slice.
func PickRandom[T any](items []T, intn func(int) int) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	if intn == nil {
		intn = rand.IntN
	}
	return items[intn(len(items))]
}

func Clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}

// SanitizeWords trims entries and drops blanks, duplicates and the spy marker.
func SanitizeWords(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" || w == internal.SpyMarker || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// =============================================================================
// STATE CHECKS
// =============================================================================

// ValidateGameState checks room state consistency. Caller holds room.Mu.
func ValidateGameState(room *internal.Room) error {
	var errs []error

	if len(room.Players) > room.Capacity() {
		errs = append(errs, fmt.Errorf("room %s has %d players, capacity %d", room.Code, len(room.Players), room.Capacity()))
	}

	hosts := 0
	for _, p := range room.Players {
		if p.IsHost {
			hosts++
		}
	}
	if len(room.Players) > 0 && hosts != 1 {
		errs = append(errs, fmt.Errorf("room %s has %d hosts", room.Code, hosts))
	}

	if room.Phase.HasSecretWord() != (room.SecretWord != "") {
		errs = append(errs, fmt.Errorf("room %s in phase %s has secret word set=%t", room.Code, room.Phase, room.SecretWord != ""))
	}

	for voter := range room.Votes {
		if room.GetPlayer(voter) == nil {
			errs = append(errs, fmt.Errorf("room %s holds a vote from non-member %s", room.Code, voter))
		}
	}

	return errors.Join(errs...)
}
