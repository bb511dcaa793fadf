package handlers

import (
	"net/http"
	"strconv"

	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/history"
	"github.com/gin-gonic/gin"
)

// ListHistory returns recent finished matches, newest first, moves
// omitted. Accepts a limit query parameter (default 20, max 100).
func ListHistory(store *history.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		recs, err := store.Recent(limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"matches": recs, "count": len(recs)})
	}
}

// GetHistoryMatch returns one finished match including its moves JSON.
func GetHistoryMatch(store *history.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := store.Get(c.Param("id"))
		if err == history.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load match"})
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}
