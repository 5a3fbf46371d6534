package backend

import (
	"context"
	"fmt"
	"os"

	"fliptrack/internal/cache"
	"fliptrack/internal/config"
	"fliptrack/internal/log"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// ConfigFromAppConfig converts the application config to backend config
func ConfigFromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	backendType := BackendType(appConfig.Backend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.Backend)
	}
	return Config{
		Type:      backendType,
		Python:    appConfig.Python,
		Dir:       appConfig.BackendDir,
		Timeout:   appConfig.Timeout,
		CacheTTL:  appConfig.CacheTTL,
		CacheSize: appConfig.CacheSize,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == CLIBackend {
		if c.Python == "" {
			return fmt.Errorf("python executable is required for cli backend")
		}
		if c.Dir == "" {
			return fmt.Errorf("backend directory is required for cli backend")
		}
	}
	if c.CacheTTL > 0 && c.CacheSize < 1 {
		return fmt.Errorf("cache size must be at least 1 when caching is enabled")
	}
	return nil
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case CLIBackend:
		result, err = f.createCLIBackend(config)
	case MemoryBackend:
		result, err = f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if config.CacheTTL > 0 {
		lru := cache.NewLRUCache[string](config.CacheSize, config.CacheTTL)
		manager := cache.NewManager(f.logger)
		manager.Register(lru)
		manager.StartCleanup(config.CacheTTL)

		result.Gateway = NewCached(result.Gateway, lru)
		result.Cleanup = chainCleanup(result.Cleanup, func() error {
			manager.Stop()
			return nil
		})
		f.logger.Debug("Listing cache enabled", "ttl", config.CacheTTL, "size", config.CacheSize)
	}
	return result, nil
}

func (f *DefaultFactory) createCLIBackend(config Config) (*BackendResult, error) {
	info, err := os.Stat(config.Dir)
	if err != nil {
		return nil, fmt.Errorf("backend directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("backend directory %s is not a directory", config.Dir)
	}

	f.logger.Debug("Initialized CLI backend", "python", config.Python, "dir", config.Dir)
	return &BackendResult{
		Gateway: NewCLI(config.Python, config.Dir, config.Timeout, f.logger),
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Debug("Initialized memory backend")
	return &BackendResult{Gateway: NewDemoMemory()}, nil
}

func chainCleanup(first, second CleanupFunc) CleanupFunc {
	if first == nil {
		return second
	}
	return func() error {
		err := first()
		if err2 := second(); err == nil {
			err = err2
		}
		return err
	}
}
