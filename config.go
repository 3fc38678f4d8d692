package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/horgh/config"
	"github.com/rs/zerolog"
)

// Config holds a server's configuration.
type Config struct {
	ListenHost string
	ListenPort string

	// ServerName is the source of every line we send.
	ServerName string

	// How long a write to a client may take. Zero means no limit. We never
	// time out reads.
	WriteTimeout time.Duration

	LogLevel zerolog.Level
}

// checkAndParseConfig checks configuration keys are present and in an
// acceptable format.
//
// We parse some values into alternate representations.
func checkAndParseConfig(file string) (*Config, error) {
	configMap, err := config.ReadStringMap(file)
	if err != nil {
		return nil, err
	}

	requiredKeys := []string{
		"listen-host",
		"listen-port",
		"server-name",
		"write-timeout",
		"log-level",
	}

	// Check each key we want is present and non-blank.
	for _, key := range requiredKeys {
		v, exists := configMap[key]
		if !exists {
			return nil, fmt.Errorf("missing required key: %s", key)
		}

		if len(v) == 0 {
			return nil, fmt.Errorf("configuration value is blank: %s", key)
		}
	}

	c := &Config{
		ListenHost: configMap["listen-host"],
		ListenPort: configMap["listen-port"],
		ServerName: configMap["server-name"],
	}

	if _, err := strconv.ParseUint(c.ListenPort, 10, 16); err != nil {
		return nil, fmt.Errorf("listen port is not valid: %s", err)
	}

	if !isValidServerName(c.ServerName) {
		return nil, fmt.Errorf("server name is not valid: %s", c.ServerName)
	}

	c.WriteTimeout, err = time.ParseDuration(configMap["write-timeout"])
	if err != nil {
		return nil, fmt.Errorf("write timeout is in invalid format: %s", err)
	}
	if c.WriteTimeout < 0 {
		return nil, fmt.Errorf("write timeout may not be negative")
	}

	c.LogLevel, err = zerolog.ParseLevel(configMap["log-level"])
	if err != nil {
		return nil, fmt.Errorf("log level is not valid: %s", err)
	}

	return c, nil
}

// isValidServerName checks the name can be used as a message source.
func isValidServerName(s string) bool {
	if len(s) == 0 || s[0] == ':' {
		return false
	}

	return !strings.ContainsAny(s, " \x00\r\n")
}
