package game

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/scythe504/undercover-backend/internal"
	"github.com/scythe504/undercover-backend/internal/testutil"
)

type fixedCatalog struct{ word string }

func (c fixedCatalog) PickWord(string) string { return c.word }

const testWord = "Airport"

// codeSeq hands out codes in order, repeating the last one.
func codeSeq(codes ...string) func() string {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		c := codes[min(i, len(codes)-1)]
		i++
		return c
	}
}

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	return NewRegistry(fixedCatalog{word: testWord}, append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)...)
}

type seat struct {
	id   string
	name string
	conn *testutil.RecordingConn
}

// setupRoom creates a room with n players; seats[0] is the host.
func setupRoom(t require.TestingT, reg *Registry, n int) (string, []seat) {
	seats := make([]seat, n)
	for i := range seats {
		seats[i] = seat{
			id:   fmt.Sprintf("p%d", i),
			name: fmt.Sprintf("Player %d", i),
			conn: testutil.NewRecordingConn(),
		}
	}

	room, err := reg.CreateRoom(seats[0].id, seats[0].name, seats[0].conn)
	require.NoError(t, err)
	for _, s := range seats[1:] {
		_, err := reg.JoinRoom(room.Code, s.id, s.name, s.conn)
		require.NoError(t, err)
	}
	return room.Code, seats
}

func resetConns(seats []seat) {
	for _, s := range seats {
		s.conn.Reset()
	}
}

func roleOf(reg *Registry, code, id string) internal.Role {
	room := reg.GetRoom(code)
	room.Mu.Lock()
	defer room.Mu.Unlock()
	return room.GetPlayer(id).Role
}

// spyAndCivilians splits seats by their assigned role.
func spyAndCivilians(reg *Registry, code string, seats []seat) (spies, civilians []seat) {
	for _, s := range seats {
		if roleOf(reg, code, s.id) == internal.RoleSpy {
			spies = append(spies, s)
		} else {
			civilians = append(civilians, s)
		}
	}
	return spies, civilians
}

type fataler interface {
	Fatalf(format string, args ...any)
}

func decodeLast[T any](t fataler, c *testutil.RecordingConn, typ string) T {
	var v T
	frames := c.OfType(typ)
	if len(frames) == 0 {
		t.Fatalf("no %q frame recorded", typ)
		return v
	}
	if err := json.Unmarshal(frames[len(frames)-1].Data, &v); err != nil {
		t.Fatalf("decode %q: %v", typ, err)
	}
	return v
}
