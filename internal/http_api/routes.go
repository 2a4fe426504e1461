package http_api

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	s.router.GET("/api/v1/state", s.state)
	s.router.PUT("/api/v1/form", s.setForm)

	s.router.POST("/api/v1/initialize", s.initialize)
	s.router.POST("/api/v1/lottery", s.createLottery)
	s.router.POST("/api/v1/tickets", s.buyTicket)
	s.router.POST("/api/v1/tickets/burn", s.burnAndBuy)
	s.router.POST("/api/v1/stake", s.stake)
	s.router.POST("/api/v1/unstake", s.unstake)
	s.router.POST("/api/v1/winner", s.pickWinner)
	s.router.POST("/api/v1/claim", s.claimPrize)
}
