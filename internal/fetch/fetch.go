// Package fetch retrieves review JSON from a Gerrit server over SSH.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/OlechowskiMichal/tools/internal/config"
)

// NormalizeChangeID ensures a change id carries the change: prefix Gerrit
// queries expect.
func NormalizeChangeID(id string) string {
	if strings.HasPrefix(id, "change:") {
		return id
	}
	return "change:" + id
}

// QueryCommand builds the ssh argv for a Gerrit query that includes patch
// sets, file lists and inline comments.
func QueryCommand(cfg config.Config, query string) []string {
	return []string{
		"ssh",
		"-p", cfg.Port,
		fmt.Sprintf("%s@%s", cfg.User, cfg.Host),
		"gerrit", "query",
		"--format=JSON",
		"--patch-sets",
		"--files",
		"--comments",
		query,
	}
}

// Fetch runs the query command and returns its stdout. A single attempt,
// no retry; the server's stderr is folded into the returned error.
func Fetch(ctx context.Context, cfg config.Config, query string) ([]byte, error) {
	argv := QueryCommand(cfg, query)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("gerrit query failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("gerrit query failed: %w", err)
	}
	return stdout.Bytes(), nil
}

// DefaultSaveName picks a filename for persisted JSON: review-<id>.json for
// change queries, a timestamped name for free-form ones.
func DefaultSaveName(query string, now time.Time) string {
	if id, ok := strings.CutPrefix(query, "change:"); ok {
		return fmt.Sprintf("review-%s.json", id)
	}
	return fmt.Sprintf("query-%s.json", now.Format("20060102_150405"))
}

// Save writes fetched JSON to path for later reuse.
func Save(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("fetch.Save: %w", err)
	}
	return nil
}
