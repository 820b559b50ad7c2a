package server

import (
	"fmt"

	"wazivo/internal/extract"
)

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
	s.displayPipelineInfo()
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health       - Health check including the AI model")
	fmt.Println("  GET  /stats        - Server statistics")
	fmt.Println("  POST /api/analyze  - Analyze a CV (multipart file/url or JSON url)")
	fmt.Println("  POST /analyze      - Alias of /api/analyze")
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo() {
	if n := s.APIKeys.Len(); n > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", n)
		fmt.Println("Include 'X-API-Key: <your-key>' header in requests to /api/analyze")
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
	}
}

// displayRequestLimitInfo shows request size and time limits
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
	if s.RequestTimeout > 0 {
		fmt.Printf("Request time budget: %s\n", s.RequestTimeout)
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimiter != nil {
		fmt.Printf("Rate limiting: ENABLED (%s backend, %d requests/min, burst: %d)\n",
			s.RateLimiter.Backend(), s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
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

// displayPipelineInfo shows which collaborators the pipeline will use
func (s *Server) displayPipelineInfo() {
	if s.components == nil {
		return
	}
	if !s.components.AI.Configured() {
		fmt.Println("WARNING: AI API key is not configured; analysis requests will fail")
	}
	if !extract.OCRAvailable {
		fmt.Println("WARNING: image OCR is not compiled in (build with -tags ocr); image uploads will be rejected")
	}
	fmt.Printf("URL fetch strategies: %v\n", s.components.Fetcher.Strategies())
	if s.components.Enricher != nil {
		fmt.Printf("Job providers: %v\n", s.components.Enricher.Providers())
	} else {
		fmt.Println("Job enrichment: DISABLED")
	}
}
