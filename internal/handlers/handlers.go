package handlers

import (
	"fmt"

	"milan/internal/external"
	"milan/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services     *service.Services
	teamsCaching string
}

// NewHandlers создает обработчики; teamsMaxAge - max-age для Cache-Control ответа /api/teams
func NewHandlers(services *service.Services, teamsMaxAge int) *Handlers {
	if teamsMaxAge <= 0 {
		teamsMaxAge = 3600
	}

	return &Handlers{
		services:     services,
		teamsCaching: fmt.Sprintf("public, max-age=%d, stale-while-revalidate=86400", teamsMaxAge),
	}
}

// relay отдает ответ удаленного backend без изменений
func relay(c *gin.Context, resp *external.ProxyResponse) {
	c.Data(resp.StatusCode, resp.ContentType, resp.Body)
}
