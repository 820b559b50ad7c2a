package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultUserAgent is a realistic desktop browser user agent. Many CV hosts
// refuse obvious bot user agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 45*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.maxInputChars", 12000)
	v.SetDefault("ai.maxOutputTokens", 4000)
	v.SetDefault("ai.useSystemPrompts", true)
	v.SetDefault("ai.customPrompts.watchFiles", false)

	v.SetDefault("ai.circuitBreaker.enabled", true)
	v.SetDefault("ai.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.circuitBreaker.failureThreshold", 0.6)

	// URL fetch configuration
	v.SetDefault("fetch.userAgent", DefaultUserAgent)
	v.SetDefault("fetch.direct.enabled", true)
	v.SetDefault("fetch.direct.timeout", 20*time.Second)
	v.SetDefault("fetch.direct.maxRedirects", 5)
	v.SetDefault("fetch.direct.maxBytes", 10*1024*1024)

	v.SetDefault("fetch.reader.enabled", true)
	v.SetDefault("fetch.reader.baseURL", "https://r.jina.ai/")
	v.SetDefault("fetch.reader.apiKey", "")
	v.SetDefault("fetch.reader.timeout", 45*time.Second)
	v.SetDefault("fetch.reader.dynamicTimeout", 55*time.Second)
	v.SetDefault("fetch.reader.maxChars", 15000)
	v.SetDefault("fetch.reader.removeSelectors", []string{
		"nav", "footer", "header", "aside", "script", "style",
		".ad", ".ads", ".advertisement", ".cookie-banner", "[role=\"navigation\"]",
	})
	v.SetDefault("fetch.reader.circuitBreaker.enabled", true)
	v.SetDefault("fetch.reader.circuitBreaker.maxRequests", 2)
	v.SetDefault("fetch.reader.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("fetch.reader.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("fetch.reader.circuitBreaker.minRequests", 5)
	v.SetDefault("fetch.reader.circuitBreaker.failureThreshold", 0.8)

	v.SetDefault("fetch.browser.enabled", false)
	v.SetDefault("fetch.browser.timeout", 30*time.Second)
	v.SetDefault("fetch.browser.settleFor", 3*time.Second)

	// Extraction
	v.SetDefault("extract.ocrLanguage", "eng")

	// Job enrichment
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.providerTimeout", 5*time.Second)
	v.SetDefault("jobs.maxResults", 25)
	v.SetDefault("jobs.maxPerProvider", 10)
	v.SetDefault("jobs.deepLinks", 3)
	v.SetDefault("jobs.fallbackLinks", 6)
	v.SetDefault("jobs.defaultLocation", "remote")
	v.SetDefault("jobs.adzuna.appID", "")
	v.SetDefault("jobs.adzuna.appKey", "")
	v.SetDefault("jobs.adzuna.country", "us")
	v.SetDefault("jobs.adzuna.baseURL", "https://api.adzuna.com/v1/api/jobs")
	v.SetDefault("jobs.jsearch.apiKey", "")
	v.SetDefault("jobs.jsearch.host", "jsearch.p.rapidapi.com")
	v.SetDefault("jobs.jsearch.baseURL", "https://jsearch.p.rapidapi.com")
	v.SetDefault("jobs.wuzzuf.enabled", true)
	v.SetDefault("jobs.wuzzuf.baseURL", "https://wuzzuf.net")
	v.SetDefault("jobs.circuitBreaker.enabled", true)
	v.SetDefault("jobs.circuitBreaker.maxRequests", 1)
	v.SetDefault("jobs.circuitBreaker.interval", 2*time.Minute)
	v.SetDefault("jobs.circuitBreaker.timeout", time.Minute)
	v.SetDefault("jobs.circuitBreaker.minRequests", 5)
	v.SetDefault("jobs.circuitBreaker.failureThreshold", 0.8)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 70*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.requestTimeout", 60*time.Second)
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.rateLimit.enabled", true)
	v.SetDefault("server.rateLimit.requestsPerMin", 10)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)
	v.SetDefault("server.rateLimit.backend", "memory")
	v.SetDefault("server.rateLimit.redisURL", "")

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 10*1024*1024) // 10MB
	v.SetDefault("app.minFileTextLength", 100)
	v.SetDefault("app.minURLTextLength", 200)

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.watchInterval", 5*time.Minute)
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	v.SetDefault("vault.secrets.readerKey", "")
	v.SetDefault("vault.secrets.jobProviders", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "wazivo")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackSuccessRates", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackContentSizes", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackProviderCalls", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackFetchStrategies", true)

	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}

// Defaults returns a Config populated only from built-in defaults
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		// Defaults are static; failing to decode them is a programming error.
		panic(err)
	}
	config.applyFallbacks()
	return &config
}
