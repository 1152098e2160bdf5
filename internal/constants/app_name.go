package constants

const (
	AppMain              = "eats"
	AppRestaurantService = "restaurant-page"
	AppSearchService     = "search-page"
)

const (
	HeaderRequestID   = "X-Request-Id"
	HeaderPageID      = "X-Page-Id"
	HeaderContentType = "Content-Type"
	ValueJson         = "application/json"
	CookieSession     = "session"
	SessionIssuer     = "eats-bff"
	SessionAudience   = "eats-browser-session"
)
