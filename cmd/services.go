package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	cfgpkg "github.com/KaramelBytes/paperstack-cli/internal/config"
	"github.com/KaramelBytes/paperstack-cli/internal/conversation"
	"github.com/KaramelBytes/paperstack-cli/internal/events"
	"github.com/KaramelBytes/paperstack-cli/internal/history"
	"github.com/KaramelBytes/paperstack-cli/internal/metrics"
	"github.com/KaramelBytes/paperstack-cli/internal/pipeline"
	"github.com/KaramelBytes/paperstack-cli/internal/publish"
	"github.com/KaramelBytes/paperstack-cli/internal/stack"
)

// services bundles the pipeline with the optional backends configured for it.
type services struct {
	pipe    *pipeline.Pipeline
	history *history.Store
	metrics *metrics.Metrics
	closers []func()
}

type serviceOptions struct {
	OutputDir         string
	AllowedExtensions []string
	WithMetrics       bool
}

func buildServices(ctx context.Context, c *cfgpkg.Global, o serviceOptions) (*services, error) {
	s := &services{}
	opts := pipeline.Options{
		OutputDir:         o.OutputDir,
		ProjectName:       c.ProjectName,
		DefaultTechnology: c.DefaultTechnology,
		AllowedExtensions: o.AllowedExtensions,
		MaxBytes:          c.MaxUploadBytes(),
		PreviewChars:      c.PreviewChars,
		Logger:            slog.Default(),
	}
	if len(opts.AllowedExtensions) == 0 {
		opts.AllowedExtensions = c.AllowedExtensions
	}

	if c.HistoryDB != "" {
		h, err := history.Open(expandHome(c.HistoryDB))
		if err != nil {
			return nil, err
		}
		slog.Debug("history enabled", "path", h.Path())
		s.history = h
		s.closers = append(s.closers, func() { _ = h.Close() })
		opts.History = h
	}
	if c.S3Bucket != "" {
		p, err := publish.NewS3FromEnv(ctx, publish.Options{
			Bucket:   c.S3Bucket,
			Region:   c.S3Region,
			Prefix:   c.S3Prefix,
			Endpoint: c.S3Endpoint,
		})
		if err != nil {
			s.Close()
			return nil, err
		}
		opts.Publisher = p
	}
	if c.NATSURL != "" {
		n, err := events.Dial(c.NATSURL, c.NATSSubject)
		if err != nil {
			slog.Warn("event notifications disabled", "url", c.NATSURL, "error", err)
		} else {
			slog.Info("publishing generation events", "url", c.NATSURL, "subject", n.Subject())
			s.closers = append(s.closers, n.Close)
			opts.Notifier = n
		}
	}
	if o.WithMetrics {
		s.metrics = metrics.New()
		opts.Metrics = s.metrics
	}
	s.pipe = pipeline.New(opts)
	return s, nil
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func sessionStore(c *cfgpkg.Global) (conversation.Store, func(), error) {
	switch strings.ToLower(c.SessionStore) {
	case "", "memory":
		return conversation.NewMemoryStore(), func() {}, nil
	case "redis":
		rs := conversation.NewRedisStore(c.RedisAddr, time.Duration(c.SessionTTLSec)*time.Second)
		return rs, func() { _ = rs.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown session_store: %s", c.SessionStore)
	}
}

// technologyLabel accepts menu-style input ("3", "flask", "spring boot")
// as well as full stack labels.
func technologyLabel(input string) string {
	if id, ok := stack.Choose(input); ok {
		return string(id)
	}
	return input
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
