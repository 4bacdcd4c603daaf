package controllers

import (
	"net/http"
	"strconv"
	"time"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type StatisticsController struct {
	Svc *services.StatisticsService
}

func NewStatisticsController(svc *services.StatisticsService) *StatisticsController {
	return &StatisticsController{Svc: svc}
}

// Summary returns aggregate stats over a window. Accepts either
// from/to dates or days=N counting back from today (default 30).
func (sc *StatisticsController) Summary(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}

	from, to, hasRange, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if hasRange {
		// Summary takes an inclusive last day; parseDateRange hands back
		// an exclusive end for the meal listing query.
		to = to.AddDate(0, 0, -1)
	} else {
		days := 30
		if d := c.Query("days"); d != "" {
			v, err := strconv.Atoi(d)
			if err != nil || v < 1 || v > 365 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 365"})
				return
			}
			days = v
		}
		now := time.Now()
		to = now
		from = now.AddDate(0, 0, -(days - 1))
	}

	summary, err := sc.Svc.Summary(c.Request.Context(), userID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build statistics"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
