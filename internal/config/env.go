// internal/config/env.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment keys that override the source section.
const (
	EnvHost   = "WBB_HOST"
	EnvPort   = "WBB_PORT"
	EnvUnitID = "WBB_UNIT_ID"
)

const defaultPort = "502"

// ReadEnv collects the overlay variables from a .env file and the process
// environment. The process environment wins. A missing file is not an error.
func ReadEnv(path string) (map[string]string, error) {
	env := map[string]string{}

	if path != "" {
		file, err := godotenv.Read(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("env file %s: %w", path, err)
		}
		for k, v := range file {
			env[k] = v
		}
	}

	for _, k := range []string{EnvHost, EnvPort, EnvUnitID} {
		if v, ok := os.LookupEnv(k); ok {
			env[k] = v
		}
	}
	return env, nil
}

// ApplyEnv overlays host, port and unit id onto the tcp source endpoint.
func ApplyEnv(cfg *Config, env map[string]string) error {
	host, hasHost := env[EnvHost]
	port, hasPort := env[EnvPort]

	if hasHost || hasPort {
		curHost, curPort, err := net.SplitHostPort(cfg.Source.Endpoint)
		if err != nil {
			curHost, curPort = cfg.Source.Endpoint, defaultPort
		}
		if !hasHost {
			host = curHost
		}
		if !hasPort {
			port = curPort
		}
		if _, err := strconv.ParseUint(port, 10, 16); err != nil {
			return fmt.Errorf("%s: invalid port %q", EnvPort, port)
		}
		cfg.Source.Endpoint = net.JoinHostPort(host, port)
	}

	if v, ok := env[EnvUnitID]; ok {
		id, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return fmt.Errorf("%s: invalid unit id %q", EnvUnitID, v)
		}
		cfg.Source.UnitID = uint8(id)
	}

	return nil
}
