package app

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/yungbote/funny-backend/internal/observability"
	"github.com/yungbote/funny-backend/internal/platform/openai"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

type Clients struct {
	// OpenAI is nil when no API key is configured; report generation then
	// answers 503 and the rest of the API keeps working.
	OpenAI     openai.Client
	LLMLimiter *rate.Limiter
}

func wireClients(log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	var observer openai.Observer
	if metrics != nil {
		observer = metrics
	}
	client, err := openai.NewClient(log, openai.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.Model,
		Timeout:    time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.OpenAI.MaxRetries,
		Observer:   observer,
	})
	switch {
	case errors.Is(err, openai.ErrMissingAPIKey):
		log.Warn("OPENAI_API_KEY not set; AI reports disabled")
		client = nil
	case err != nil:
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	limit := rate.Inf
	if cfg.OpenAI.RatePerSecond > 0 {
		limit = rate.Limit(cfg.OpenAI.RatePerSecond)
	}
	return Clients{
		OpenAI:     client,
		LLMLimiter: rate.NewLimiter(limit, cfg.OpenAI.Burst),
	}, nil
}
