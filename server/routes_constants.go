package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	routePrefix = "/sourcecheck/auth"

	// SSI sign up
	RouteSignUp       = routePrefix + "/sign-up"
	RouteSSISignUpReq = routePrefix + "/ssi-sign-up-request"
	RouteSSISignUp    = routePrefix + "/ssi-sign-up"
	RouteSSISignInReq = routePrefix + "/ssi-sign-in-request"
	RouteSSISignIn    = routePrefix + "/ssi-sign-in"
	RouteProtected    = routePrefix + "/protected"
	RouteUnprotected  = routePrefix + "/unprotected"
	RoutePreflight    = "/sourcecheck/"

	// Live connections
	RouteSocket = "/socket"

	// Operations
	RouteHealth = "/healthz"
)
