package constants

// Centralized constants for env keys, routes, messages and log fields.
const (
	// Environment variable keys
	EnvConfigPath     = "DUEL_CONFIG"
	EnvDBPath         = "DUEL_DB"
	EnvSessionSecret  = "SESSION_SECRET"
	EnvLogLevel       = "DUEL_LOG_LEVEL"
	EnvAllowedOrigins = "DUEL_ALLOWED_ORIGINS"
	EnvHealthURL      = "DUEL_HEALTH_URL"

	// HTTP headers and content types
	HeaderAuthorization = "Authorization"
	BearerPrefix        = "Bearer "

	// gin context keys set by the auth middleware
	CtxPlayerID   = "playerID"
	CtxPlayerName = "playerName"
	CtxIsAdmin    = "isAdmin"
)

// Routes used by the backend router
const (
	RouteAPIPrefix    = "/api"
	RouteRules        = "/rules"
	RouteVersion      = "/version"
	RouteFlavors      = "/flavors"
	RouteFlavorsRoll  = "/flavors/roll"
	RouteMemberFlavor = "/members/:playerID/flavor"
	RouteDuels        = "/duels"
	RouteDuelByID     = "/duels/:matchID"
	RouteDuelRespond  = "/duels/:matchID/respond"
	RouteDuelMove     = "/duels/:matchID/move"
	RouteDuelAbort    = "/duels/:matchID/abort"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
)

// Messages returned to API callers
const (
	ErrInvalidRequest     = "Invalid request"
	ErrAuthRequired       = "Authentication required"
	ErrInvalidSession     = "Invalid session"
	ErrAdminRequired      = "Sorry, this is admin only"
	ErrDuelNotFound       = "Duel not found."
	ErrSelfChallenge      = "You can't duel yourself."
	ErrNotEligible        = "Both players need a flavor role."
	ErrNoFlavors          = "No duel items configured for this server."
	ErrPairBusy           = "There is already a duel between you two here."
	ErrNotYourChallenge   = "This invite isn't for you."
	ErrAlreadyResolved    = "This invite was already answered."
	ErrNotAParticipant    = "You're not part of this duel."
	ErrAlreadyChosen      = "You already chose this round."
	ErrDuelFinished       = "This duel is already over."
	ErrDuelNotStarted     = "The duel has not started yet."
	ErrInvalidMove        = "Move must be attack or defend."
	ErrUnknownFlavor      = "Unknown flavor."
	ErrFailedCreateDuel   = "Failed to create duel"
	ErrFailedFetchFlavors = "Failed to fetch flavors"
	ErrFailedSaveFlavors  = "Failed to save flavors"
	ErrFailedAssignFlavor = "Failed to assign flavor"
	ErrFailedStoreMove    = "Failed to store move"

	MsgChallengeSent = "Waiting for acceptance..."
	MsgAccepted      = "Duel accepted, preparing the arena..."
	MsgDeclined      = "Duel declined."
	MsgMoveStored    = "Choice locked in. Waiting for opponent."
	MsgMoveIgnored   = "Duel is over; choice ignored."
	MsgAborted       = "Duel aborted."
	MsgStatsRolled   = "Duel stats added/updated for items in the list!"
	MsgFlavorSet     = "Flavor assigned."
)

// Logging field names
const (
	LogFieldMatchID   = "match_id"
	LogFieldPlayerID  = "player_id"
	LogFieldTargetID  = "target_id"
	LogFieldChannelID = "channel_id"
	LogFieldRound     = "round"
	LogFieldOutcome   = "outcome"
	LogFieldReason    = "reason"
	LogFieldPhase     = "phase"
	LogFieldFlavor    = "flavor"
	LogFieldCount     = "count"
	LogFieldAddr      = "addr"
	LogFieldJob       = "job"
)
