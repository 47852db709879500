// Package exiftool wraps the exiftool binary behind a client with hard
// per-operation deadlines. Metadata writes either complete or the process
// group is killed; a stuck invocation never blocks the pipeline.
package exiftool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"chronofix/internal/evidence"
	"chronofix/internal/services"
)

// Timestamp layout used by exiftool for every date field.
const dateLayout = "2006:01:02 15:04:05"

// ImageDateFields lists image date tags in priority order: the capture
// moment beats the digitization moment beats the generic modification
// field.
var ImageDateFields = []string{"DateTimeOriginal", "DateTimeDigitized", "DateTime"}

// VideoDateFields lists the fields video containers scatter creation dates
// across, tried in this order.
var VideoDateFields = []string{"CreateDate", "DateTimeOriginal", "MediaCreateDate", "CreationDate", "TrackCreateDate"}

// Metadata holds the raw date fields returned by a probe, keyed by tag name.
type Metadata struct {
	Fields map[string]string
}

// Date returns the highest-priority parseable date among the given fields.
func (m *Metadata) Date(priority []string) (time.Time, bool) {
	if m == nil {
		return time.Time{}, false
	}
	for _, field := range priority {
		if dt, ok := evidence.ParseDate(m.Fields[field]); ok {
			return dt, true
		}
	}
	return time.Time{}, false
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps exiftool CLI interactions.
type Client struct {
	binary       string
	probeTimeout time.Duration
	writeTimeout time.Duration
	exec         Executor
}

// New constructs an exiftool client. Timeouts are in seconds; zero values
// fall back to 10s probes and 30s writes.
func New(binary string, probeTimeoutSeconds, writeTimeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("exiftool binary required")
	}
	if probeTimeoutSeconds <= 0 {
		probeTimeoutSeconds = 10
	}
	if writeTimeoutSeconds <= 0 {
		writeTimeoutSeconds = 30
	}
	client := &Client{
		binary:       binary,
		probeTimeout: time.Duration(probeTimeoutSeconds) * time.Second,
		writeTimeout: time.Duration(writeTimeoutSeconds) * time.Second,
		exec:         commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Probe reads the image date fields plus the Artist tag from a file.
func (c *Client) Probe(ctx context.Context, path string) (*Metadata, error) {
	fields := append(append([]string{}, ImageDateFields...), "Artist")
	return c.probe(ctx, path, fields)
}

// ProbeVideo reads the video creation date fields from a file.
func (c *Client) ProbeVideo(ctx context.Context, path string) (*Metadata, error) {
	return c.probe(ctx, path, VideoDateFields)
}

func (c *Client) probe(ctx context.Context, path string, fields []string) (*Metadata, error) {
	args := make([]string, 0, len(fields)+2)
	args = append(args, "-j")
	for _, field := range fields {
		args = append(args, "-"+field)
	}
	args = append(args, path)

	stdout, stderr, err := c.run(ctx, c.probeTimeout, "probe", args)
	if err != nil {
		return nil, err
	}
	meta, err := parseProbeOutput(stdout)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "exiftool", "probe", firstLine(stderr), err)
	}
	return meta, nil
}

// EmbeddedDate reads the best available image date, treating probe failure
// as absence so extraction never aborts on one corrupt file. Timeouts and
// cancellation are still surfaced: the caller decides whether a hung file
// is problematic or the run is over.
func (c *Client) EmbeddedDate(ctx context.Context, path string) (time.Time, bool, error) {
	meta, err := c.Probe(ctx, path)
	if err != nil && !services.IsTimeout(err) && !errors.Is(err, context.Canceled) {
		// Degraded fallback: files that choke the multi-field probe can
		// still yield the single capture tag.
		meta, err = c.probe(ctx, path, ImageDateFields[:1])
	}
	if err != nil {
		if services.IsTimeout(err) || errors.Is(err, context.Canceled) {
			return time.Time{}, false, err
		}
		return time.Time{}, false, nil
	}
	dt, ok := meta.Date(ImageDateFields)
	return dt, ok, nil
}

// WriteEmbeddedDate sets the three image date fields in place.
func (c *Client) WriteEmbeddedDate(ctx context.Context, path string, dt time.Time) error {
	value := dt.Format(dateLayout)
	args := []string{
		"-overwrite_original",
		"-DateTime=" + value,
		"-DateTimeOriginal=" + value,
		"-DateTimeDigitized=" + value,
		path,
	}
	_, _, err := c.run(ctx, c.writeTimeout, "write embedded date", args)
	return err
}

// WriteFilesystemDate sets the filesystem modify and create dates.
func (c *Client) WriteFilesystemDate(ctx context.Context, path string, dt time.Time) error {
	value := dt.Format(dateLayout)
	args := []string{
		"-overwrite_original",
		"-FileModifyDate=" + value,
		"-FileCreateDate=" + value,
		path,
	}
	_, _, err := c.run(ctx, c.writeTimeout, "write filesystem date", args)
	return err
}

// Version reports the installed exiftool version, used by the preflight
// check.
func (c *Client) Version(ctx context.Context) (string, error) {
	stdout, _, err := c.run(ctx, c.probeTimeout, "version", []string{"-ver"})
	if err != nil {
		return "", err
	}
	return firstLine(stdout), nil
}

func (c *Client) run(ctx context.Context, timeout time.Duration, operation string, args []string) (string, string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	stdout, stderr, err := c.exec.Run(ctx, c.binary, args)
	if err != nil {
		if services.IsTimeout(err) || errors.Is(err, context.Canceled) {
			return stdout, stderr, err
		}
		detail := firstLine(stderr)
		if detail == "" {
			detail = err.Error()
		}
		return stdout, stderr, services.Wrap(services.ErrExternalTool, "exiftool", operation, detail, err)
	}
	return stdout, stderr, nil
}

// parseProbeOutput decodes the -j output, a one-element JSON array of
// tag-to-value objects. Numeric values are stringified.
func parseProbeOutput(output string) (*Metadata, error) {
	var records []map[string]any
	if err := json.Unmarshal([]byte(output), &records); err != nil {
		return nil, fmt.Errorf("decode probe output: %w", err)
	}
	meta := &Metadata{Fields: make(map[string]string)}
	if len(records) == 0 {
		return meta, nil
	}
	for key, value := range records[0] {
		switch v := value.(type) {
		case string:
			meta.Fields[key] = v
		case float64:
			meta.Fields[key] = fmt.Sprintf("%v", v)
		}
	}
	return meta, nil
}
