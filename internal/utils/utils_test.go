package utils

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/scythe504/undercover-backend/internal"
)

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestGenerateRoomCode(t *testing.T) {
	for range 200 {
		code := GenerateRoomCode()
		require.Len(t, code, internal.RoomCodeLength)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(RoomCodeChars, ch), "unexpected %q in %s", ch, code)
		}
		assert.Equal(t, code, NormalizeRoomCode(code))
	}
}

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, "AB12", NormalizeRoomCode("  ab12\n"))
}

func TestNormalizeName(t *testing.T) {
	name, ok := NormalizeName("  Layla ")
	assert.True(t, ok)
	assert.Equal(t, "Layla", name)

	_, ok = NormalizeName("   ")
	assert.False(t, ok)

	_, ok = NormalizeName(strings.Repeat("é", internal.MaxNameLength))
	assert.True(t, ok, "length counts runes")

	_, ok = NormalizeName(strings.Repeat("x", internal.MaxNameLength+1))
	assert.False(t, ok)
}

func TestSampleIndices_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(t, "n")
		k := rapid.IntRange(-3, 35).Draw(t, "k")
		seed := rapid.Uint64().Draw(t, "seed")
		rng := rand.New(rand.NewPCG(seed, 7))

		got := SampleIndices(n, k, rng.IntN)

		if want := Clamp(k, 0, n); len(got) != want {
			t.Fatalf("len %d, want %d", len(got), want)
		}
		seen := make(map[int]bool)
		for _, i := range got {
			if i < 0 || i >= n {
				t.Fatalf("index %d out of [0,%d)", i, n)
			}
			if seen[i] {
				t.Fatalf("duplicate index %d", i)
			}
			seen[i] = true
		}
	})
}

func TestSampleIndices_CoversEverySubset(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	hits := make(map[[2]int]int)
	for range 3000 {
		got := SampleIndices(4, 2, rng.IntN)
		a, b := min(got[0], got[1]), max(got[0], got[1])
		hits[[2]int{a, b}]++
	}
	assert.Len(t, hits, 6, "every 2-subset of 4 is reachable")
	for pair, n := range hits {
		assert.Greater(t, n, 300, "subset %v drawn too rarely", pair)
	}
}

func TestPickRandom(t *testing.T) {
	assert.Equal(t, "", PickRandom([]string(nil), nil))
	assert.Equal(t, "c", PickRandom([]string{"a", "b", "c"}, func(n int) int { return n - 1 }))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(0, 1, 5))
	assert.Equal(t, 5, Clamp(9, 1, 5))
	assert.Equal(t, 3, Clamp(3, 1, 5))
	assert.Equal(t, 1, Clamp(3, 1, 0), "empty range collapses to lo")
}

func TestSanitizeWords(t *testing.T) {
	got := SanitizeWords([]string{" Beach", "", "Beach", internal.SpyMarker, "Moon  "})
	assert.Equal(t, []string{"Beach", "Moon"}, got)
}

func TestValidateGameState(t *testing.T) {
	good := func() *internal.Room {
		return &internal.Room{
			Code:  "AB12",
			Phase: internal.PhaseLobby,
			Players: []*internal.Player{
				{Id: "a", IsHost: true},
				{Id: "b"},
			},
			Votes: map[string]string{},
		}
	}

	assert.NoError(t, ValidateGameState(good()))

	r := good()
	r.Players[1].IsHost = true
	assert.ErrorContains(t, ValidateGameState(r), "2 hosts")

	r = good()
	r.Players[0].IsHost = false
	assert.ErrorContains(t, ValidateGameState(r), "0 hosts")

	r = good()
	r.Phase = internal.PhaseInProgress
	assert.ErrorContains(t, ValidateGameState(r), "secret word")

	r = good()
	r.SecretWord = "Beach"
	assert.ErrorContains(t, ValidateGameState(r), "secret word")

	r = good()
	r.Votes["ghost"] = "a"
	assert.ErrorContains(t, ValidateGameState(r), "non-member")

	r = good()
	r.MaxPlayers = 1
	assert.ErrorContains(t, ValidateGameState(r), "capacity")

	empty := &internal.Room{Code: "EMPT", Phase: internal.PhaseLobby}
	assert.NoError(t, ValidateGameState(empty))
}
