package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossy-p/voicerooms/internal/models"
)

func TestGetOrCreateIsUpsert(t *testing.T) {
	s := NewStore()

	first := s.GetOrCreate("lobby")
	second := s.GetOrCreate("lobby")
	assert.Same(t, first, second)
	assert.Equal(t, []string{"lobby"}, s.List())
}

func TestCreateRejectsDuplicate(t *testing.T) {
	s := NewStore()

	r, err := s.Create("lobby")
	require.NoError(t, err)
	r.AddMember("conn-a", models.UserProfile{Username: "alice", Language: "en"})

	_, err = s.Create("lobby")
	require.ErrorIs(t, err, ErrRoomExists)

	// Collision leaves existing membership untouched
	existing, ok := s.Get("lobby")
	require.True(t, ok)
	assert.Equal(t, 1, existing.Len())
}

func TestRemoveIfEmpty(t *testing.T) {
	s := NewStore()
	r := s.GetOrCreate("lobby")
	r.AddMember("conn-a", models.UserProfile{Username: "alice", Language: "en"})

	assert.False(t, s.RemoveIfEmpty("lobby"))
	_, ok := s.Get("lobby")
	assert.True(t, ok)

	r.RemoveMember("conn-a")
	assert.True(t, s.RemoveIfEmpty("lobby"))
	_, ok = s.Get("lobby")
	assert.False(t, ok)

	assert.False(t, s.RemoveIfEmpty("lobby"))
}

func TestDeleteReturnsLastKnownState(t *testing.T) {
	s := NewStore()
	r := s.GetOrCreate("lobby")
	r.AddMember("conn-a", models.UserProfile{Username: "alice", Language: "en"})

	removed, ok := s.Delete("lobby")
	require.True(t, ok)
	assert.Equal(t, []string{"conn-a"}, removed.MemberIDs())

	_, ok = s.Delete("lobby")
	assert.False(t, ok)
}

func TestDeletedNameReusableWithFreshState(t *testing.T) {
	s := NewStore()
	r := s.GetOrCreate("lobby")
	r.AddMember("conn-a", models.UserProfile{Username: "alice", Language: "en"})
	s.Delete("lobby")

	fresh := s.GetOrCreate("lobby")
	assert.True(t, fresh.IsEmpty())
	assert.NotSame(t, r, fresh)
}

func TestListIsSorted(t *testing.T) {
	s := NewStore()
	s.GetOrCreate("zeta")
	s.GetOrCreate("alpha")
	s.GetOrCreate("mid")

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, s.List())
}
