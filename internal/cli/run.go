package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ppiankov/websnip/internal/metrics"
	"github.com/ppiankov/websnip/internal/model"
	"github.com/ppiankov/websnip/internal/pipeline"
)

// session is what one command invocation runs with
type session struct {
	cfg      *model.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	pipeline *pipeline.Pipeline
}

func newSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	var m *metrics.Metrics
	if metricsTextfile != "" {
		m = metrics.New()
	}
	return &session{
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		pipeline: pipeline.New(cfg, logger, m),
	}, nil
}

// close writes the metrics textfile, whatever the outcome of the run
func (s *session) close(runErr error) error {
	if err := s.metrics.WriteTextfile(metricsTextfile); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// inputPath is the first argument, else input.path
func (s *session) inputPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if s.cfg.Input.Path != "" {
		return s.cfg.Input.Path, nil
	}
	return "", fmt.Errorf("no input: pass a path or set input.path")
}
