package api

import (
	"github.com/ericogr/dew-duel/internal/constants"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the public, authenticated and admin endpoints
// under /api.
func RegisterRoutes(router *gin.Engine, auth *TokenAuthority, duels *DuelHandler, flavors *FlavorHandler) {
	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		// Public endpoints
		apiRoutes.GET(constants.RouteRules, flavors.Rules)
		apiRoutes.GET(constants.RouteFlavors, flavors.ListFlavors)
		apiRoutes.GET(constants.RouteVersion, Version)

		protected := apiRoutes.Group("")
		protected.Use(AuthRequired(auth))
		protected.POST(constants.RouteDuels, duels.CreateDuel)
		protected.GET(constants.RouteDuelByID, duels.GetDuel)
		protected.POST(constants.RouteDuelRespond, duels.RespondDuel)
		protected.POST(constants.RouteDuelMove, duels.SubmitMove)

		admin := protected.Group("")
		admin.Use(AdminRequired())
		admin.POST(constants.RouteDuelAbort, duels.AbortDuel)
		admin.POST(constants.RouteFlavorsRoll, flavors.RollFlavors)
		admin.PUT(constants.RouteMemberFlavor, flavors.AssignFlavor)
	}
}
