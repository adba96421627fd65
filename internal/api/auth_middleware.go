package api

import (
	"net/http"
	"strings"

	"github.com/ericogr/dew-duel/internal/constants"
	"github.com/ericogr/dew-duel/internal/game"
	"github.com/gin-gonic/gin"
)

// AuthRequired validates the bearer token and injects identity into context.
func AuthRequired(auth *TokenAuthority) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(constants.HeaderAuthorization)
		if !strings.HasPrefix(header, constants.BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrAuthRequired})
			return
		}
		claims, err := auth.Parse(strings.TrimSpace(strings.TrimPrefix(header, constants.BearerPrefix)))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrInvalidSession})
			return
		}
		c.Set(constants.CtxPlayerID, claims.Subject)
		c.Set(constants.CtxPlayerName, claims.Name)
		c.Set(constants.CtxIsAdmin, claims.Admin)
		c.Next()
	}
}

// AdminRequired must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(constants.CtxIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrAdminRequired})
			return
		}
		c.Next()
	}
}

func currentPlayer(c *gin.Context) game.Participant {
	p := game.Participant{ID: c.GetString(constants.CtxPlayerID), Name: c.GetString(constants.CtxPlayerName)}
	if p.Name == "" {
		p.Name = p.ID
	}
	return p
}
