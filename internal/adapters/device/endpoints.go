package device

import (
	"context"
	json "encoding/json/v2"
	"net/http"
	"time"

	perr "cfgvault/internal/platform/errors"
	"cfgvault/internal/services/trigger/domain"
)

// checkpointDoc is one entry of the device checkpoint list
type checkpointDoc struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// cliRequest is the body for CLI and shell execution
type cliRequest struct {
	Cmd string `json:"cmd"`
}

// cliResponse is the device answer for CLI and shell execution
type cliResponse struct {
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// rateDoc carries the configuration change rate attribute
type rateDoc struct {
	ConfigurationChangesRate float64 `json:"configuration_changes_rate"`
}

// logRequest is one syslog-style event pushed to the device
type logRequest struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// ListCheckpoints implements domain.CheckpointLister.
// The device returns checkpoints ordered oldest first
func (c *Client) ListCheckpoints(ctx context.Context) ([]domain.Checkpoint, error) {
	b, err := c.do(ctx, http.MethodGet, "/rest/v1/configlist", nil)
	if err != nil {
		return nil, err
	}
	var docs []checkpointDoc
	if err := json.Unmarshal(b, &docs); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "device configlist decode failed")
	}
	out := make([]domain.Checkpoint, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Checkpoint{Name: d.Name, CreatedAt: d.CreatedAt})
	}
	return out, nil
}

// SampleRate implements domain.RateSource
func (c *Client) SampleRate(ctx context.Context) (float64, error) {
	b, err := c.do(ctx, http.MethodGet, "/rest/v1/system?attributes=configuration_changes_rate", nil)
	if err != nil {
		return 0, err
	}
	var doc rateDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeUnknown, "device rate decode failed")
	}
	return doc.ConfigurationChangesRate, nil
}

// RunCLI implements domain.CLIRenderer
func (c *Client) RunCLI(ctx context.Context, cmd string) (string, error) {
	return c.run(ctx, "/rest/v1/cli", cmd)
}

// RunShell implements domain.AuditRenderer
func (c *Client) RunShell(ctx context.Context, cmd string) (string, error) {
	return c.run(ctx, "/rest/v1/shell", cmd)
}

// Export implements domain.Exporter. The copy command produces no output
// on success; the device reports failures in the error field
func (c *Client) Export(ctx context.Context, cmd string) error {
	_, err := c.run(ctx, "/rest/v1/cli", cmd)
	return err
}

func (c *Client) run(ctx context.Context, path, cmd string) (string, error) {
	b, err := c.do(ctx, http.MethodPost, path, cliRequest{Cmd: cmd})
	if err != nil {
		return "", err
	}
	var resp cliResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "device command decode failed")
	}
	if resp.Error != "" {
		return resp.Output, perr.Newf(perr.ErrorCodeUnavailable, "device command failed: %s", resp.Error)
	}
	return resp.Output, nil
}

// Notify implements domain.Notifier by pushing a syslog-style event to the
// device. Delivery is best effort; failures are logged and dropped
func (c *Client) Notify(ctx context.Context, sev domain.Severity, msg string) {
	body := logRequest{Severity: string(sev), Message: msg}
	if _, err := c.do(ctx, http.MethodPost, "/rest/v1/logs", body); err != nil {
		c.log.Warn().Err(err).Str("severity", string(sev)).Msg("device notify failed")
	}
}
