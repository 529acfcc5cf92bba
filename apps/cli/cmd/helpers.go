package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/ariel-mendez/restflow/packages/core/config"
	"github.com/ariel-mendez/restflow/packages/httpx"
	"github.com/ariel-mendez/restflow/packages/store"
)

func getEnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func loadConfig() (*config.Config, error) {
	return config.LoadConfig(configFlag)
}

// openWorkspace resolves the workspace directory from flag > config
// and returns both the store and the loaded config.
func openWorkspace() (*store.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	dir := workspaceFlag
	if dir == "" {
		dir = cfg.GetWorkspaceDir()
	}
	return store.Open(dir), cfg, nil
}

func historyPath(ws *store.Store) string {
	return filepath.Join(ws.Dir(), "history.db")
}

func newClient(cfg *config.Config, timeout time.Duration, insecure bool) *httpx.Client {
	opts := []httpx.ClientOption{
		httpx.WithFollowRedirects(cfg.GetFollowRedirects()),
		httpx.WithMaxRedirects(cfg.MaxRedirects),
		httpx.WithValidateSSL(cfg.GetValidateSSL() && !insecure),
	}
	if timeout > 0 {
		opts = append(opts, httpx.WithTimeout(timeout))
	} else if cfg.Timeout > 0 {
		opts = append(opts, httpx.WithTimeout(time.Duration(cfg.Timeout)*time.Millisecond))
	}
	if cfg.Proxy != "" {
		opts = append(opts, httpx.WithProxy(cfg.Proxy))
	}
	return httpx.NewClient(opts...)
}

func warnf(format string, args ...any) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintln(os.Stderr, yellow("warning: "+fmt.Sprintf(format, args...)))
}

// parseHeaderFlags turns repeated -H "Key: Value" flags into a map.
func parseHeaderFlags(headers []string) (map[string]string, error) {
	result := make(map[string]string, len(headers))
	for _, h := range headers {
		key, value, found := strings.Cut(h, ":")
		if !found || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid header %q, expected \"Key: Value\"", h)
		}
		result[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return result, nil
}

// parseVarValue keeps JSON scalars typed (numbers, bools, null) and
// falls back to the raw string for everything else.
func parseVarValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		switch v.(type) {
		case float64, bool, nil:
			return v
		}
	}
	return raw
}
