package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyServerAPIKeyFallbacks()
	c.applyProviderKeyFallbacks()
	c.applyObservabilityDefaults()
}

// applyServerAPIKeyFallbacks applies API key fallbacks from environment variables
func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv("WAZIVO_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = splitAndTrim(apiKeysEnv)
		}
	}
}

// applyProviderKeyFallbacks accepts the conventional variable names used by
// the upstream services when the prefixed ones are not set.
func (c *Config) applyProviderKeyFallbacks() {
	fallbacks := []struct {
		target *string
		env    string
	}{
		{&c.AI.APIKey, "GEMINI_API_KEY"},
		{&c.Fetch.Reader.APIKey, "JINA_API_KEY"},
		{&c.Jobs.Adzuna.AppID, "ADZUNA_APP_ID"},
		{&c.Jobs.Adzuna.AppKey, "ADZUNA_APP_KEY"},
		{&c.Jobs.JSearch.APIKey, "RAPIDAPI_KEY"},
	}

	for _, fb := range fallbacks {
		if *fb.target == "" {
			*fb.target = os.Getenv(fb.env)
		}
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}

	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"WAZIVO_AI_APIKEY",
		"WAZIVO_AI_MODEL",
		"WAZIVO_FETCH_READER_BASEURL",
		"WAZIVO_FETCH_READER_APIKEY",
		"WAZIVO_JOBS_ADZUNA_APPID",
		"WAZIVO_JOBS_ADZUNA_APPKEY",
		"WAZIVO_JOBS_JSEARCH_APIKEY",
		"WAZIVO_SERVER_PORT",
		"WAZIVO_SERVER_HOST",
		"WAZIVO_APP_LOGLEVEL",
		"WAZIVO_VAULT_ENABLED",
		"GEMINI_API_KEY",
		"JINA_API_KEY",
		"ADZUNA_APP_ID",
		"ADZUNA_APP_KEY",
		"RAPIDAPI_KEY",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			if isSensitiveName(envVar) {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] AI Provider: %s", c.AI.Provider)
	log.Printf("[CONFIG] AI Model: %s", c.AI.Model)
	log.Printf("[CONFIG] AI API Key: %s", configuredState(c.AI.APIKey))
	log.Printf("[CONFIG] Reader: enabled=%t url=%s key=%s", c.Fetch.Reader.Enabled, c.Fetch.Reader.BaseURL, configuredState(c.Fetch.Reader.APIKey))
	log.Printf("[CONFIG] Browser strategy enabled: %t", c.Fetch.Browser.Enabled)
	log.Printf("[CONFIG] Job providers: adzuna=%s jsearch=%s wuzzuf=%t",
		configuredState(c.Jobs.Adzuna.AppID+c.Jobs.Adzuna.AppKey), configuredState(c.Jobs.JSearch.APIKey), c.Jobs.Wuzzuf.Enabled)
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Rate limit: enabled=%t backend=%s", c.Server.RateLimit.Enabled, c.Server.RateLimit.Backend)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)

	log.Println("[CONFIG] =====================================")
}

func isSensitiveName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "key") || strings.Contains(lower, "token") || strings.Contains(lower, "appid")
}

func configuredState(value string) string {
	if value != "" {
		return "***CONFIGURED***"
	}
	return "***NOT SET***"
}
