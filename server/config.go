package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/elnosh/gopix/pix"
)

type LogLevel int

const (
	Info LogLevel = iota
	Debug
	Disable
)

const (
	HOST           = "PIXD_HOST"
	PORT           = "PIXD_PORT"
	LOG_LEVEL      = "PIXD_LOG_LEVEL"
	MAX_BODY_BYTES = "PIXD_MAX_BODY_BYTES"
	QR_SIZE        = "PIXD_QR_SIZE"
	QR_MARGIN      = "PIXD_QR_MARGIN"
	QR_LEVEL       = "PIXD_QR_LEVEL"
)

const (
	DefaultHost         = "127.0.0.1"
	DefaultPort         = "3339"
	DefaultMaxBodyBytes = 16 << 10
)

type Config struct {
	Host         string
	Port         string
	LogLevel     LogLevel
	MaxBodyBytes int64
	// used when a request does not set its own size, margin or level
	RenderConfig pix.RenderConfig
	Renderer     pix.Renderer
}

func DefaultConfig() Config {
	return Config{
		Host:         DefaultHost,
		Port:         DefaultPort,
		LogLevel:     Info,
		MaxBodyBytes: DefaultMaxBodyBytes,
		RenderConfig: pix.DefaultRenderConfig(),
	}
}

// GetConfig reads the server config from the environment.
// Unset variables keep their default value.
func GetConfig() (Config, error) {
	config := DefaultConfig()

	if host := os.Getenv(HOST); len(host) > 0 {
		config.Host = host
	}
	if port := os.Getenv(PORT); len(port) > 0 {
		if _, err := strconv.ParseUint(port, 10, 16); err != nil {
			return Config{}, fmt.Errorf("invalid %v: %v", PORT, port)
		}
		config.Port = port
	}

	if level := os.Getenv(LOG_LEVEL); len(level) > 0 {
		logLevel, err := ParseLogLevel(level)
		if err != nil {
			return Config{}, err
		}
		config.LogLevel = logLevel
	}

	if maxBody := os.Getenv(MAX_BODY_BYTES); len(maxBody) > 0 {
		n, err := strconv.ParseInt(maxBody, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid %v: %v", MAX_BODY_BYTES, maxBody)
		}
		config.MaxBodyBytes = n
	}

	if size := os.Getenv(QR_SIZE); len(size) > 0 {
		n, err := strconv.Atoi(size)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid %v: %v", QR_SIZE, size)
		}
		config.RenderConfig.Size = n
	}
	if margin := os.Getenv(QR_MARGIN); len(margin) > 0 {
		n, err := strconv.Atoi(margin)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid %v: %v", QR_MARGIN, margin)
		}
		config.RenderConfig.Margin = n
	}
	if level := os.Getenv(QR_LEVEL); len(level) > 0 {
		recoveryLevel, err := pix.ParseRecoveryLevel(level)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %v: %v", QR_LEVEL, err)
		}
		config.RenderConfig.Level = recoveryLevel
	}

	return config, nil
}

func ParseLogLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "info":
		return Info, nil
	case "debug":
		return Debug, nil
	case "disable", "off":
		return Disable, nil
	default:
		return 0, fmt.Errorf("invalid log level '%v'", level)
	}
}
