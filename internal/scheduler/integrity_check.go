package scheduler

import (
	"context"
	"time"

	"koppara_backend/internal/lineage/domain"
	"koppara_backend/platform/logger"
)

const defaultIntegrityCheckInterval = time.Hour

// IntegrityVerifier scans the sponsor graph.
type IntegrityVerifier interface {
	VerifyIntegrity(ctx context.Context) (domain.IntegrityReport, error)
}

// IntegrityCheck periodically verifies the sponsor graph and reports
// corruption in the logs.
type IntegrityCheck struct {
	verifier IntegrityVerifier
	log      *logger.Logger
	interval time.Duration
}

func NewIntegrityCheck(verifier IntegrityVerifier, log *logger.Logger, interval time.Duration) *IntegrityCheck {
	if interval <= 0 {
		interval = defaultIntegrityCheckInterval
	}
	return &IntegrityCheck{verifier: verifier, log: log, interval: interval}
}

func (c *IntegrityCheck) Run(ctx context.Context) {
	if c == nil || c.verifier == nil {
		return
	}

	c.check(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.check(ctx)
		}
	}
}

func (c *IntegrityCheck) check(ctx context.Context) bool {
	report, err := c.verifier.VerifyIntegrity(ctx)
	if err != nil {
		c.log.Warn("lineage integrity check failed", "error", err)
		return false
	}

	if !report.Healthy() {
		c.log.Error("lineage graph corrupted",
			"checked", report.Checked,
			"selfLoops", len(report.SelfLoops),
			"dangling", len(report.Dangling),
			"cycles", len(report.Cycles),
		)
		return false
	}

	c.log.Debug("lineage integrity check passed", "checked", report.Checked, "roots", report.Roots)
	return true
}
