package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mossy-p/voicerooms/internal/room"
)

// RoomInfo is one row of the room listing.
type RoomInfo struct {
	Name        string `json:"name"`
	MemberCount int    `json:"memberCount"`
}

// ListRooms returns the current rooms with member counts (requires JWT).
// Empty rooms never appear here: the store removes them on last leave.
func ListRooms(store *room.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		names := store.List()
		rooms := make([]RoomInfo, 0, len(names))
		for _, name := range names {
			r, ok := store.Get(name)
			if !ok {
				continue
			}
			rooms = append(rooms, RoomInfo{Name: name, MemberCount: r.Len()})
		}
		c.JSON(http.StatusOK, gin.H{"rooms": rooms})
	}
}
