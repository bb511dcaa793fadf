package handlers

import (
	"net/http"

	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/game"
	"github.com/gin-gonic/gin"
)

// ListUsers returns the sorted names of connected clients.
func ListUsers(c *gin.Context) {
	users := game.Manager.Users()
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// ListMatches returns summaries of every live match.
func ListMatches(c *gin.Context) {
	matches := game.Manager.LiveMatches()
	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

// GetMatch returns a consistent snapshot of one live match's board,
// turn and deadline.
func GetMatch(c *gin.Context) {
	snap, ok := game.Manager.MatchSnapshot(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
		return
	}
	c.JSON(http.StatusOK, snap)
}
