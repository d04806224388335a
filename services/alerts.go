package services

import (
	"fmt"
	"strings"

	"instagram-agent-platform/internal/agent"
	"instagram-agent-platform/internal/config"
	"instagram-agent-platform/internal/logger"
)

// RunAlertNotifier emails the operator when a run fails outright or
// completes degraded. Alerting is best-effort: a broken mailer never
// changes a run's outcome.
type RunAlertNotifier struct {
	config      config.Config
	emailSender EmailSender
}

func NewRunAlertNotifier(cfg config.Config, emailSender EmailSender) *RunAlertNotifier {
	return &RunAlertNotifier{
		config:      cfg,
		emailSender: emailSender,
	}
}

func (n *RunAlertNotifier) NotifyRunFailed(trigger string, runErr error) {
	if !n.enabled() {
		return
	}
	subject := "Daily post agent: run failed"
	body := fmt.Sprintf("The agent run triggered by %q failed.\n\nError: %v\n", trigger, runErr)
	if err := n.emailSender.SendRunAlert(subject, body); err != nil {
		logger.Error("Failed to send run-failed alert", "error", err)
	}
}

func (n *RunAlertNotifier) NotifyDegradedRun(trigger string, result *agent.RunResult) {
	if !n.enabled() || result == nil || len(result.Warnings) == 0 {
		return
	}

	lines := make([]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		lines = append(lines, fmt.Sprintf("- [%s] %s", w.Stage, w.Message))
	}

	subject := "Daily post agent: run completed with warnings"
	body := fmt.Sprintf(
		"The agent run triggered by %q produced a post but hit non-fatal failures:\n\n%s\n\nPublished: %v\n",
		trigger, strings.Join(lines, "\n"), result.Post.Published)

	if err := n.emailSender.SendRunAlert(subject, body); err != nil {
		logger.Error("Failed to send degraded-run alert", "error", err)
	}
}

func (n *RunAlertNotifier) enabled() bool {
	return n.config.SMTPHost != "" && n.emailSender != nil
}
