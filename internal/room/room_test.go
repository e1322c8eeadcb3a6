package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossy-p/voicerooms/internal/models"
)

func TestAddMemberAndRoster(t *testing.T) {
	r := newRoom("lobby")
	r.AddMember("conn-b", models.UserProfile{Username: "bob", Language: "fr"})
	r.AddMember("conn-a", models.UserProfile{Username: "alice", Language: "en"})
	r.SetPeerID("conn-a", "p1")
	r.SetPeerID("conn-b", "p2")

	roster := r.Roster()
	require.Len(t, roster, 2)

	// Sorted by connection id regardless of insertion order
	assert.Equal(t, "conn-a", roster[0].ID)
	assert.Equal(t, "alice", roster[0].Username)
	assert.Equal(t, "en", roster[0].Language)
	assert.Equal(t, "p1", roster[0].PeerID)
	assert.Equal(t, "conn-b", roster[1].ID)
	assert.Equal(t, "p2", roster[1].PeerID)
}

func TestAddMemberRefreshesProfile(t *testing.T) {
	r := newRoom("lobby")
	r.AddMember("conn-a", models.UserProfile{Username: "alice", Language: "en"})
	r.AddMember("conn-a", models.UserProfile{Username: "alice", Language: "de"})

	require.Equal(t, 1, r.Len())
	profile, ok := r.Profile("conn-a")
	require.True(t, ok)
	assert.Equal(t, "de", profile.Language)
}

func TestSetPeerIDRequiresMembership(t *testing.T) {
	r := newRoom("lobby")
	r.SetPeerID("ghost", "p9")

	assert.Empty(t, r.Roster())
	assert.True(t, r.IsEmpty())
}

func TestRemoveMemberClearsBothTables(t *testing.T) {
	r := newRoom("lobby")
	r.AddMember("conn-a", models.UserProfile{Username: "alice", Language: "en"})
	r.SetPeerID("conn-a", "p1")

	r.RemoveMember("conn-a")
	assert.True(t, r.IsEmpty())
	assert.False(t, r.HasMember("conn-a"))

	// Rejoining after removal starts with no stale peer id
	r.AddMember("conn-a", models.UserProfile{Username: "alice", Language: "en"})
	roster := r.Roster()
	require.Len(t, roster, 1)
	assert.Empty(t, roster[0].PeerID)
}

func TestRemoveMemberAbsentIsNoOp(t *testing.T) {
	r := newRoom("lobby")
	r.RemoveMember("ghost")
	assert.True(t, r.IsEmpty())
}

func TestMemberWithoutPeerIDIsPermitted(t *testing.T) {
	r := newRoom("lobby")
	r.AddMember("conn-a", models.UserProfile{Username: "alice", Language: "en"})

	roster := r.Roster()
	require.Len(t, roster, 1)
	assert.Empty(t, roster[0].PeerID)
}
