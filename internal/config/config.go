// Package config provides configuration management for vidsplit.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort        = 8686
	DefaultLogLevel    = "info"
	DefaultDataDir     = ".vidsplit"
	DefaultRenderURL   = "http://localhost:4000/render"
	DefaultProjectFile = "./revideo/project.ts"
	DefaultRetention   = 24 * time.Hour

	// Environment variable names
	EnvPort           = "VIDSPLIT_PORT"
	EnvLogLevel       = "VIDSPLIT_LOG_LEVEL"
	EnvDataDir        = "VIDSPLIT_DATA_DIR"
	EnvRenderURL      = "VIDSPLIT_RENDER_URL"
	EnvRenderTimeoutS = "VIDSPLIT_RENDER_TIMEOUT_S"
	EnvProjectFile    = "VIDSPLIT_PROJECT_FILE"
	EnvFFprobe        = "VIDSPLIT_FFPROBE"
	EnvHeadless       = "VIDSPLIT_HEADLESS"
	EnvRetentionH     = "VIDSPLIT_RETENTION_H"
	EnvS3Bucket       = "VIDSPLIT_S3_BUCKET"
	EnvS3Prefix       = "VIDSPLIT_S3_PREFIX"
	EnvS3Region       = "VIDSPLIT_S3_REGION"

	// Database filename
	DBFilename = "vidsplit.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	WorkRoot() string
	UploadsDir() string
	RenderURL() string
	RenderTimeout() time.Duration
	ProjectFile() string
	FFprobePath() string
	Headless() bool
	Retention() time.Duration
	S3Bucket() string
	S3Prefix() string
	S3Region() string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port          int
	logLevel      string
	dataDir       string
	renderURL     string
	renderTimeout time.Duration
	projectFile   string
	ffprobePath   string
	headless      bool
	retention     time.Duration
	s3Bucket      string
	s3Prefix      string
	s3Region      string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:        DefaultPort,
		logLevel:    DefaultLogLevel,
		dataDir:     defaultDataDir(),
		renderURL:   DefaultRenderURL,
		projectFile: DefaultProjectFile,
		retention:   DefaultRetention,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if u := os.Getenv(EnvRenderURL); u != "" {
		cfg.renderURL = u
	}

	// Zero keeps the render call unbounded; renders routinely run for
	// minutes and the pipeline treats any failure as job-fatal.
	if ts := os.Getenv(EnvRenderTimeoutS); ts != "" {
		secs, err := strconv.Atoi(ts)
		if err != nil || secs < 0 {
			return nil, fmt.Errorf("invalid %s: must be a non-negative integer", EnvRenderTimeoutS)
		}
		cfg.renderTimeout = time.Duration(secs) * time.Second
	}

	if pf := os.Getenv(EnvProjectFile); pf != "" {
		cfg.projectFile = pf
	}

	cfg.ffprobePath = os.Getenv(EnvFFprobe)

	if h := os.Getenv(EnvHeadless); h == "1" || h == "true" {
		cfg.headless = true
	}

	if rh := os.Getenv(EnvRetentionH); rh != "" {
		hours, err := strconv.Atoi(rh)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvRetentionH)
		}
		cfg.retention = time.Duration(hours) * time.Hour
	}

	cfg.s3Bucket = os.Getenv(EnvS3Bucket)
	cfg.s3Prefix = os.Getenv(EnvS3Prefix)
	cfg.s3Region = os.Getenv(EnvS3Region)

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// WorkRoot returns the base directory holding per-job working areas
func (c *EnvConfig) WorkRoot() string {
	return filepath.Join(c.dataDir, "jobs")
}

// UploadsDir returns the directory holding per-session source videos
func (c *EnvConfig) UploadsDir() string {
	return filepath.Join(c.dataDir, "uploads")
}

// RenderURL returns the external render service endpoint
func (c *EnvConfig) RenderURL() string {
	return c.renderURL
}

func (c *EnvConfig) RenderTimeout() time.Duration {
	return c.renderTimeout
}

// ProjectFile returns the project descriptor path sent to the render service
func (c *EnvConfig) ProjectFile() string {
	return c.projectFile
}

func (c *EnvConfig) FFprobePath() string {
	return c.ffprobePath
}

func (c *EnvConfig) Headless() bool {
	return c.headless
}

// Retention returns how long job working areas are kept on disk
func (c *EnvConfig) Retention() time.Duration {
	return c.retention
}

func (c *EnvConfig) S3Bucket() string {
	return c.s3Bucket
}

func (c *EnvConfig) S3Prefix() string {
	return c.s3Prefix
}

func (c *EnvConfig) S3Region() string {
	return c.s3Region
}

// SetPort overrides the port, used by CLI flags.
func (c *EnvConfig) SetPort(port int) {
	c.port = port
}

// SetDataDir overrides the data directory, used by CLI flags.
func (c *EnvConfig) SetDataDir(dir string) {
	c.dataDir = dir
}

// SetHeadless overrides headless mode, used by CLI flags.
func (c *EnvConfig) SetHeadless(headless bool) {
	c.headless = headless
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
