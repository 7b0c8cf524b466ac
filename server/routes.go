package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.ProtectedMiddleware()...))

	s.RegisterRouteFunc("GET "+RouteRecordings, ChainMiddleware(s.ListRecordingsHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteRecordingsFile, ChainMiddleware(s.StreamRecordingHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteRecordingsLink, ChainMiddleware(s.SignedURLHandler(), s.ProtectedMiddleware()...))

	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())

	// ServeMux matches method-qualified patterns only, so browser CORS
	// preflights need their own OPTIONS registrations to reach the CORS
	// middleware.
	for _, route := range []string{RouteLogin, RouteLogout, RouteRecordings, RouteRecordingsFile, RouteRecordingsLink} {
		s.RegisterRouteFunc("OPTIONS "+route, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
	}
}
