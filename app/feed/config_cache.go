package feed

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ConfigCache holds the source definitions found in a directory of YAML files.
type ConfigCache struct {
	sourcesDir string
	cache      map[string]*Source
	mu         sync.RWMutex
}

func NewConfigCache(sourcesDir string) *ConfigCache {
	return &ConfigCache{
		sourcesDir: sourcesDir,
		cache:      make(map[string]*Source),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.sourcesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.sourcesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yml")

		source, err := cc.LoadConfig(name)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source loaded", "source", name, "type", source.Type, "enabled", source.Settings.Enabled)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(name string) (*Source, error) {
	configFile := cc.configFilePath(name)
	source, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	source.Name = name
	if source.Type == SourceTypeMarkdown && source.Path != "" && !filepath.IsAbs(source.Path) {
		source.Path = filepath.Join(cc.sourcesDir, source.Path)
	}

	if err := validateSource(source); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[source.Name] = source

	return source, nil
}

func (cc *ConfigCache) GetConfig(name string) (*Source, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	source, ok := cc.cache[name]
	if !ok {
		return nil, fmt.Errorf("source config with name '%s' not found", name)
	}
	return source, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Source {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	return maps.Clone(cc.cache)
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Source {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabled := make(map[string]*Source)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabled[k] = v
		}
	}
	return enabled
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Source, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var source Source
	if err := yaml.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if source.Type == "" {
		source.Type = SourceTypeFeed
	}
	if source.Settings.RefreshInterval == 0 {
		source.Settings.RefreshInterval = 3600
	}
	if source.Settings.MaxItems == 0 {
		source.Settings.MaxItems = 100
	}
	if source.Settings.Timeout == 0 {
		source.Settings.Timeout = 30
	}

	return &source, nil
}

func (cc *ConfigCache) configFilePath(name string) string {
	return filepath.Join(cc.sourcesDir, name+".yml")
}

func validateSource(source *Source) error {
	if source == nil {
		return fmt.Errorf("source is nil")
	}

	if source.Name == "" {
		return fmt.Errorf("source name is required")
	}

	switch source.Type {
	case SourceTypeFeed:
		if source.URL == "" {
			return fmt.Errorf("feed URL is required")
		}
	case SourceTypeMarkdown:
		if source.Path == "" {
			return fmt.Errorf("posts path is required")
		}
	default:
		return fmt.Errorf("unknown source type: %s", source.Type)
	}

	nonNegativeFields := map[string]int{
		"refresh interval": source.Settings.RefreshInterval,
		"max items":        source.Settings.MaxItems,
		"timeout":          source.Settings.Timeout,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	for i, filter := range source.Filters {
		if !filterFields[filter.Field] {
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}

	return nil
}
