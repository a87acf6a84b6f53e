package security

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the analyzer's runtime switches, loaded from the JSON security
// config file or left at defaults.
type Config struct {
	// MaxAttachmentSize is advisory: the pipeline counts attachments, it does
	// not weigh them. Kept so operators can share one config file with the
	// delivery layer.
	MaxAttachmentSize     int64
	ScanAttachments       bool
	CheckSenderReputation bool
	AIIntegration         bool
	TrackSenderBehavior   bool
}

// DefaultConfig returns the analyzer defaults used when no config file is
// present.
func DefaultConfig() Config {
	return Config{
		MaxAttachmentSize:     50 * 1024 * 1024,
		ScanAttachments:       true,
		CheckSenderReputation: true,
		AIIntegration:         true,
		TrackSenderBehavior:   false,
	}
}

// Initialize loads the analyzer configuration from a JSON file. A missing
// file keeps the defaults and succeeds; an unreadable or malformed file is an
// error.
func (a *Analyzer) Initialize(configPath string) error {
	if configPath == "" {
		return nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		a.logger.Info("security config not found, using defaults",
			zap.String("path", configPath))
		return nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	defaults := DefaultConfig()
	v.SetDefault("max_attachment_size", defaults.MaxAttachmentSize)
	v.SetDefault("scan_attachments", defaults.ScanAttachments)
	v.SetDefault("check_sender_reputation", defaults.CheckSenderReputation)
	v.SetDefault("ai_integration", defaults.AIIntegration)
	v.SetDefault("track_sender_behavior", defaults.TrackSenderBehavior)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read security config %s: %w", configPath, err)
	}

	cfg := Config{
		MaxAttachmentSize:     v.GetInt64("max_attachment_size"),
		ScanAttachments:       v.GetBool("scan_attachments"),
		CheckSenderReputation: v.GetBool("check_sender_reputation"),
		AIIntegration:         v.GetBool("ai_integration"),
		TrackSenderBehavior:   v.GetBool("track_sender_behavior"),
	}

	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()

	a.logger.Info("security config loaded",
		zap.String("path", configPath),
		zap.Bool("scan_attachments", cfg.ScanAttachments),
		zap.Bool("check_sender_reputation", cfg.CheckSenderReputation),
		zap.Bool("ai_integration", cfg.AIIntegration))
	return nil
}
