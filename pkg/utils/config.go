package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/oxygene76/orrery/pkg/simulation"
)

// Config represents the orrery configuration
type Config struct {
	Simulation SimulationConfig `yaml:"simulation" mapstructure:"simulation"`
	Viewport   ViewportConfig   `yaml:"viewport" mapstructure:"viewport"`
	Camera     CameraConfig     `yaml:"camera" mapstructure:"camera"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Assets     AssetsConfig     `yaml:"assets" mapstructure:"assets"`
	Client     ClientConfig     `yaml:"client" mapstructure:"client"`
}

// SimulationConfig contains the kernel settings
type SimulationConfig struct {
	Speed       float64 `yaml:"speed" mapstructure:"speed"`
	RandSeed    int64   `yaml:"rand_seed" mapstructure:"rand_seed"`
	MaxDelta    float64 `yaml:"max_delta" mapstructure:"max_delta"`
	FrameRate   int     `yaml:"frame_rate" mapstructure:"frame_rate"`
	SeedPlanets bool    `yaml:"seed_planets" mapstructure:"seed_planets"`
}

// ViewportConfig is the overlay size in pixels
type ViewportConfig struct {
	Width  float64 `yaml:"width" mapstructure:"width"`
	Height float64 `yaml:"height" mapstructure:"height"`
}

// CameraConfig contains the camera frustum and controls
type CameraConfig struct {
	FOV         float64 `yaml:"fov" mapstructure:"fov"`
	Near        float64 `yaml:"near" mapstructure:"near"`
	Far         float64 `yaml:"far" mapstructure:"far"`
	Speed       float64 `yaml:"speed" mapstructure:"speed"`
	Sensitivity float64 `yaml:"sensitivity" mapstructure:"sensitivity"`
}

// ServerConfig contains the websocket service settings
type ServerConfig struct {
	ListenAddr   string        `yaml:"listen_addr" mapstructure:"listen_addr"`
	CommandRate  float64       `yaml:"command_rate" mapstructure:"command_rate"`
	CommandBurst int           `yaml:"command_burst" mapstructure:"command_burst"`
	MaxClients   int           `yaml:"max_clients" mapstructure:"max_clients"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	FrameEvery   int           `yaml:"frame_every" mapstructure:"frame_every"`
}

// AssetsConfig locates textures and models
type AssetsConfig struct {
	TextureDir  string        `yaml:"texture_dir" mapstructure:"texture_dir"`
	ModelDir    string        `yaml:"model_dir" mapstructure:"model_dir"`
	LoadTimeout time.Duration `yaml:"load_timeout" mapstructure:"load_timeout"`
}

// ClientConfig contains local settings
type ClientConfig struct {
	DataDir     string `yaml:"data_dir" mapstructure:"data_dir"`
	SnapshotDir string `yaml:"snapshot_dir" mapstructure:"snapshot_dir"`
	LogLevel    string `yaml:"log_level" mapstructure:"log_level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	orreryDir := filepath.Join(homeDir, ".orrery")

	return &Config{
		Simulation: SimulationConfig{
			Speed:       30,
			RandSeed:    0,
			MaxDelta:    0.25,
			FrameRate:   60,
			SeedPlanets: true,
		},
		Viewport: ViewportConfig{
			Width:  800,
			Height: 800,
		},
		Camera: CameraConfig{
			FOV:         75,
			Near:        0.1,
			Far:         1000,
			Speed:       5,
			Sensitivity: 0.002,
		},
		Server: ServerConfig{
			ListenAddr:   ":8088",
			CommandRate:  20,
			CommandBurst: 40,
			MaxClients:   32,
			WriteTimeout: 5 * time.Second,
			FrameEvery:   2,
		},
		Assets: AssetsConfig{
			TextureDir:  filepath.Join("assets", "textures"),
			ModelDir:    filepath.Join("assets", "models"),
			LoadTimeout: 10 * time.Second,
		},
		Client: ClientConfig{
			DataDir:     filepath.Join(orreryDir, "data"),
			SnapshotDir: filepath.Join(orreryDir, "snapshots"),
			LogLevel:    "info",
		},
	}
}

// LoadConfig loads configuration from file or creates default. An empty
// path searches ~/.orrery, . and ./configs.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".orrery"))
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	// ORRERY_SERVER_LISTEN_ADDR overrides server.listen_addr
	v.SetEnvPrefix("ORRERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createDefaultConfig(v)
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults registers every key so that environment overrides apply
// even when the file does not mention them.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("simulation.speed", c.Simulation.Speed)
	v.SetDefault("simulation.rand_seed", c.Simulation.RandSeed)
	v.SetDefault("simulation.max_delta", c.Simulation.MaxDelta)
	v.SetDefault("simulation.frame_rate", c.Simulation.FrameRate)
	v.SetDefault("simulation.seed_planets", c.Simulation.SeedPlanets)
	v.SetDefault("viewport.width", c.Viewport.Width)
	v.SetDefault("viewport.height", c.Viewport.Height)
	v.SetDefault("camera.fov", c.Camera.FOV)
	v.SetDefault("camera.near", c.Camera.Near)
	v.SetDefault("camera.far", c.Camera.Far)
	v.SetDefault("camera.speed", c.Camera.Speed)
	v.SetDefault("camera.sensitivity", c.Camera.Sensitivity)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.command_rate", c.Server.CommandRate)
	v.SetDefault("server.command_burst", c.Server.CommandBurst)
	v.SetDefault("server.max_clients", c.Server.MaxClients)
	v.SetDefault("server.write_timeout", c.Server.WriteTimeout)
	v.SetDefault("server.frame_every", c.Server.FrameEvery)
	v.SetDefault("assets.texture_dir", c.Assets.TextureDir)
	v.SetDefault("assets.model_dir", c.Assets.ModelDir)
	v.SetDefault("assets.load_timeout", c.Assets.LoadTimeout)
	v.SetDefault("client.data_dir", c.Client.DataDir)
	v.SetDefault("client.snapshot_dir", c.Client.SnapshotDir)
	v.SetDefault("client.log_level", c.Client.LogLevel)
}

// SaveConfig saves configuration to path, or to GetConfigPath when empty
func SaveConfig(config *Config, path string) error {
	if path == "" {
		var err error
		if path, err = GetConfigPath(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := createDirectories(config); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Configuration saved to: %s\n", path)
	return nil
}

// createDefaultConfig saves and returns the default configuration with
// any environment overrides applied
func createDefaultConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := SaveConfig(&config, ""); err != nil {
		return nil, err
	}

	return &config, nil
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Simulation.Speed <= 0 || config.Simulation.Speed > simulation.MaxSpeed {
		return fmt.Errorf("simulation speed must be in (0, %v], got %v", simulation.MaxSpeed, config.Simulation.Speed)
	}
	if config.Simulation.MaxDelta < 0 {
		return fmt.Errorf("max delta cannot be negative")
	}
	if config.Simulation.FrameRate < 1 || config.Simulation.FrameRate > 240 {
		return fmt.Errorf("frame rate must be between 1 and 240, got %d", config.Simulation.FrameRate)
	}

	if config.Viewport.Width <= 0 || config.Viewport.Height <= 0 {
		return fmt.Errorf("viewport must have a positive size")
	}

	if config.Camera.FOV <= 0 || config.Camera.FOV >= 180 {
		return fmt.Errorf("camera fov must be in (0, 180) degrees")
	}
	if config.Camera.Near <= 0 || config.Camera.Far <= config.Camera.Near {
		return fmt.Errorf("camera planes must satisfy 0 < near < far")
	}

	if config.Server.ListenAddr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if config.Server.CommandRate <= 0 || config.Server.CommandBurst < 1 {
		return fmt.Errorf("command rate and burst must be positive")
	}
	if config.Server.MaxClients < 1 {
		return fmt.Errorf("at least one client must be allowed")
	}

	if !validLogLevels[config.Client.LogLevel] {
		return fmt.Errorf("invalid log level: %s", config.Client.LogLevel)
	}

	return nil
}

// createDirectories creates necessary directories based on config
func createDirectories(config *Config) error {
	dirs := []string{
		config.Client.DataDir,
		config.Client.SnapshotDir,
	}

	for _, dir := range dirs {
		if dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// GetConfigPath returns the path to the default config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".orrery", "config.yaml"), nil
}

// Verbose reports whether debug logging is enabled
func (c *Config) Verbose() bool {
	return c.Client.LogLevel == "debug"
}

// FrameInterval is the wall-clock time between frames
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Simulation.FrameRate)
}
