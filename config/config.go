package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"furniroom/server/models"
	"furniroom/server/persistence"
)

// Config is the root of the server configuration file
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Room    RoomConfig    `yaml:"room"`
	Network NetworkConfig `yaml:"network"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPath string `yaml:"metrics_path"`
}

type StoreConfig struct {
	Type string `yaml:"type"`
	DSN  string `yaml:"dsn"`
	File string `yaml:"file"`
}

type RoomConfig struct {
	// UnloadEmpty drops a room from memory when its last occupant leaves.
	UnloadEmpty *bool `yaml:"unload_empty"`
}

type NetworkConfig struct {
	SendBuffer int `yaml:"send_buffer"`
}

// GetPort returns the HTTP port: config -> PORT -> 8080
func (s *ServerConfig) GetPort() int {
	if s.Port > 0 {
		return s.Port
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			return port
		}
	}
	return 8080
}

func (s *ServerConfig) GetMetricsPath() string {
	if s.MetricsPath != "" {
		return s.MetricsPath
	}
	return "/metrics"
}

// GetType returns the store backend: config -> DB_TYPE -> json
func (s *StoreConfig) GetType() string {
	return stringWithEnvFallback(s.Type, "DB_TYPE", "json")
}

// GetDSN returns the SQL connection string for the selected backend
func (s *StoreConfig) GetDSN() string {
	var def string
	switch s.GetType() {
	case "postgres":
		def = "host=localhost user=furniroom password=furniroom dbname=furniroom sslmode=disable"
	case "mysql":
		def = "furniroom:furniroom@tcp(localhost:3306)/furniroom"
	case "sqlite":
		def = "furniroom.db"
	}
	return stringWithEnvFallback(s.DSN, "DATABASE_URL", def)
}

// GetFile returns the JSON store path: config -> DB_FILE -> db.json
func (s *StoreConfig) GetFile() string {
	return stringWithEnvFallback(s.File, "DB_FILE", "db.json")
}

func (r *RoomConfig) GetUnloadEmpty() bool {
	if r.UnloadEmpty == nil {
		return true
	}
	return *r.UnloadEmpty
}

func (n *NetworkConfig) GetSendBuffer() int {
	if n.SendBuffer > 0 {
		return n.SendBuffer
	}
	return 256
}

// stringWithEnvFallback resolves a value with priority config -> env -> default
func stringWithEnvFallback(configValue, envVar, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return defaultValue
}

// Load reads a YAML configuration file. An empty path falls back to the
// FURNIROOM_CONFIG environment variable; with neither set every value uses
// its default.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("FURNIROOM_CONFIG")
		if path == "" {
			return &Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Seed is the initial content written into an empty store
type Seed struct {
	Users       []SeedUser             `yaml:"users"`
	Definitions []models.DefinitionRow `yaml:"definitions"`
	Rooms       []models.RoomData      `yaml:"rooms"`
	Items       []models.ItemRow       `yaml:"items"`
}

type SeedUser struct {
	ID       int64  `yaml:"id"`
	Username string `yaml:"username"`
}

// LoadSeed reads a YAML seed file
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	return &seed, nil
}

// Apply writes the seed into the store. Existing rows with the same ids are
// overwritten.
func (s *Seed) Apply(db persistence.Storage) error {
	for _, u := range s.Users {
		if err := db.SaveUser(u.ID, u.Username); err != nil {
			return err
		}
	}
	for _, d := range s.Definitions {
		if err := db.SaveDefinition(d); err != nil {
			return err
		}
	}
	for i := range s.Rooms {
		if err := db.SaveRoom(&s.Rooms[i]); err != nil {
			return err
		}
	}
	for _, item := range s.Items {
		if err := db.InsertItem(item); err != nil {
			return err
		}
	}
	return nil
}
