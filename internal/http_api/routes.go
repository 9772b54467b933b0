package http_api

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	s.router.GET("/health", s.health)
	s.router.GET("/api/v1/eligibility", s.eligibility)
	s.router.POST("/api/v1/claim", s.claim)
	s.router.GET("/api/v1/inventory", s.inventory)
}
