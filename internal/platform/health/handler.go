package health

import (
	"net/http"

	"github.com/SlpAus/tarot-reading-backend/internal/platform/database"
	"github.com/gin-gonic/gin"
)

// Healthz 是存活探针。进程活着就返回200，
// Redis状态作为附加信息给出，不影响状态码。
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"redis_healthy": database.IsRedisHealthy(),
	})
}
