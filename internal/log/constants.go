package log

const (
	KeyAppName            = "app"
	KeyRequestID          = "requestId"
	KeyTraceID            = "traceId"
	KeySpanID             = "spanId"
	KeySessionID          = "sessionId"
	KeyProcess            = "process"
	KeyTag                = "tag"
	KeyConfig             = "config"
	KeyRequest            = "request"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyPathValues         = "pathValues"
	KeyCacheKey           = "cacheKey"
	KeyStorageKey         = "storageKey"
	KeyRestaurantID       = "restaurantId"
	KeyRestaurant         = "restaurant"
	KeyMenuItemID         = "menuItemId"
	KeyCartItems          = "cartItems"
	KeyCartItemsCount     = "cartItemsCount"
	KeyCheckoutRequest    = "checkoutRequest"
	KeyCity               = "city"
	KeySearchState        = "searchState"
	KeySearchAction       = "searchAction"
	KeySearchGeneration   = "searchGeneration"
	KeySearchResultsTotal = "searchResultsTotal"
	KeyUpstreamURL        = "upstreamURL"
	KeyStatusCode         = "statusCode"
)
