// Package updater performs the optional best-effort release check. Every
// failure mode (network error, timeout, malformed response, unparseable
// version) is silent: the check either yields a newer version string or
// nothing, and it never delays the main flow beyond its timeout.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

const defaultEndpoint = "https://api.github.com/repos/agentmd/agentmd/releases/latest"

// Checker queries a release registry for the latest published version.
type Checker struct {
	Endpoint string
	Client   *http.Client
}

// NewChecker builds a Checker with the given per-request timeout.
func NewChecker(timeout time.Duration) *Checker {
	return &Checker{
		Endpoint: defaultEndpoint,
		Client:   &http.Client{Timeout: timeout},
	}
}

type release struct {
	TagName string `json:"tag_name"`
}

// Check returns the latest version string when it is newer than current,
// and "" in every other case, errors included.
func (c *Checker) Check(ctx context.Context, current string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "agentmd")

	resp, err := c.Client.Do(req)
	if err != nil {
		return ""
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ""
	}
	var rel release
	if err := json.Unmarshal(body, &rel); err != nil {
		return ""
	}

	latest, err := semver.NewVersion(strings.TrimPrefix(rel.TagName, "v"))
	if err != nil {
		return ""
	}
	cur, err := semver.NewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return ""
	}
	if latest.GreaterThan(cur) {
		return latest.String()
	}
	return ""
}

// Banner formats the update notice printed after a successful check.
func Banner(current, latest string) string {
	return fmt.Sprintf("Update available: %s -> %s (https://github.com/agentmd/agentmd/releases)", current, latest)
}
