// analytics.go wraps the posthog.Client so callers never have to care
// whether analytics is configured.
package utils

import (
	"log/slog"

	"github.com/posthog/posthog-go"
)

// AnalyticsClient is a nil-safe wrapper around a PostHog client. When no API
// key is configured every method is a no-op.
type AnalyticsClient struct {
	client posthog.Client
	logger *slog.Logger
}

// InitializeAnalytics builds the analytics client. An empty API key yields an
// inert client rather than an error, so local and test runs need no setup.
func InitializeAnalytics(apiKey string, logger *slog.Logger) *AnalyticsClient {
	if apiKey == "" {
		logger.Warn("Analytics API key is empty, event tracking disabled")
		return &AnalyticsClient{}
	}
	logger.Info("Initializing analytics client")
	wrapper := AnalyticsClient{logger: logger}
	wrapper.client, _ = posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: "https://eu.i.posthog.com"})
	return &wrapper
}

func (a *AnalyticsClient) IsInitialized() bool {
	return a.client != nil
}

// Enqueue buffers one capture event. distinctID identifies the acting user.
func (a *AnalyticsClient) Enqueue(distinctID string, event string, properties map[string]any) {
	if a.client == nil {
		return
	}
	if a.logger != nil {
		a.logger.Debug("Enqueueing analytics event", slog.String("distinct_id", distinctID), slog.String("event", event))
	}
	a.client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: properties,
	})
}

// Close flushes buffered events. Safe to call on an inert client.
func (a *AnalyticsClient) Close() {
	if a.client == nil {
		return
	}
	a.client.Close()
}
