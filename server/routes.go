package server

func (s *Server) initRoutes() {
	// SSI SIGN UP
	s.RegisterRouteHandler("POST "+RouteSignUp, ChainMiddleware(s.SignUpHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSSISignUpReq, ChainMiddleware(s.SSISignUpRequestHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSSISignUp, ChainMiddleware(s.SSISignUpHandler(), s.APIMiddleware()...))

	// SSI SIGN IN
	s.RegisterRouteHandler("POST "+RouteSSISignInReq, ChainMiddleware(s.SSISignInRequestHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSSISignIn, ChainMiddleware(s.SSISignInHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteProtected, ChainMiddleware(s.ProtectedHandler(), s.APIMiddleware(s.RequireSessionToken)...))
	s.RegisterRouteHandler("GET "+RouteUnprotected, ChainMiddleware(s.UnprotectedHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RoutePreflight, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))

	// Live connections do their own origin check during the upgrade
	s.RegisterRouteHandler("GET "+RouteSocket, ChainMiddleware(s.socket.ServeHTTP, s.LoggingMiddleware, s.RecoverMiddleware))

	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.RecoverMiddleware))
}
