package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
	s.displayEnrichmentInfo()
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health    - Health check")
	fmt.Println("  GET  /stats     - Server statistics")
	fmt.Println("  POST /analyze   - Analyze a resume (requires API key)")
	fmt.Println("  POST /grammar   - Check resume grammar (requires API key)")
	if s.obs.MetricsHandler() != nil {
		fmt.Printf("  GET  %-9s - Prometheus metrics\n", s.obs.MetricsPath())
	}
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo() {
	if keys := s.APIKeys(); len(keys) > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", len(keys))
		fmt.Println("Include 'X-API-Key: <your-key>' header in requests to /analyze and /grammar")
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
		fmt.Println("WARNING: API endpoints are publicly accessible!")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Println("  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
		fmt.Println("WARNING: No rate limiting configured!")
	}
}

// displayEnrichmentInfo shows whether AI enrichment is wired in
func (s *Server) displayEnrichmentInfo() {
	if s.enricher == nil {
		fmt.Println("AI enrichment: DISABLED (neutral score used)")
		return
	}
	fmt.Printf("AI enrichment: ENABLED (provider: %s)\n", s.enricher.Provider())
	if s.cache != nil {
		fmt.Println("  - Enrichment cache enabled")
	}
}
