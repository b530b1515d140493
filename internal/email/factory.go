package email

import (
	"github.com/N0urDEV/Formalitys-sub001/platform/config"
)

// NewSender builds the configured Sender. With email disabled a NoopSender
// is returned so callers never need nil checks.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}
