// Package media inspects uploaded files and cleans up replaced assets.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrNoDuration is returned when ffprobe reports no usable duration.
var ErrNoDuration = errors.New("media: duration unavailable")

// CommandRunner executes external commands and returns stdout bytes.
type CommandRunner func(ctx context.Context, binary string, args ...string) ([]byte, error)

// Prober reads container metadata with the ffprobe CLI.
type Prober struct {
	Binary  string
	Args    []string
	Run     CommandRunner
	Timeout time.Duration
}

// NewProber constructs a Prober that shells out to ffprobe.
func NewProber(binary string, timeout time.Duration) *Prober {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Prober{
		Binary:  binary,
		Args:    []string{"-v", "error", "-show_entries", "format=duration", "-of", "json"},
		Run:     defaultCommandRunner,
		Timeout: timeout,
	}
}

// Duration returns the length of the media file at path in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	if p.Run == nil {
		p.Run = defaultCommandRunner
	}

	execCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	args := append([]string{}, p.Args...)
	args = append(args, path)

	out, err := p.Run(execCtx, p.Binary, args...)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var payload struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return 0, fmt.Errorf("parse ffprobe response: %w", err)
	}

	raw := strings.TrimSpace(payload.Format.Duration)
	if raw == "" || raw == "N/A" {
		return 0, ErrNoDuration
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds < 0 {
		return 0, ErrNoDuration
	}
	return seconds, nil
}

func defaultCommandRunner(ctx context.Context, binary string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.Output()
}
