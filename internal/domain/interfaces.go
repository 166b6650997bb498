package domain

import (
	"context"
)

// RiskEngine is the external actuarial model. Implementations block on I/O; the
// returned result must be treated as read-only by every caller.
type RiskEngine interface {
	Calculate(ctx context.Context, req *EngineRequest) (*RawModelResult, error)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetEngineConfig() *EngineConfig
	GetCacheConfig() *CacheConfig
	GetAuditConfig() *AuditConfig
	Reload() error
	Validate() error
	GetDatabaseConnectionString() string
	GetDatabaseURL() string
	IsProduction() bool
	IsDevelopment() bool
}
