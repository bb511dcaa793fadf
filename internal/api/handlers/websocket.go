package handlers

import (
	"net/http"

	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/game"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/ws"
	"github.com/gin-gonic/gin"
)

// WatchMatch upgrades to WebSocket and streams one live match: an
// initial board snapshot, then move/highlight/match_end events relayed
// from the match event bus.
func WatchMatch(c *gin.Context) {
	matchID := c.Param("id")
	snap, ok := game.Manager.MatchSnapshot(matchID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
		return
	}

	ws.MatchHub.ServeWatch(c.Writer, c.Request, matchID, snap)
}
