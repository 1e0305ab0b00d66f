package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/thannaske/s3inventory/pkg/logger"
)

// MetricsAPI is the part of the CloudWatch client used to read bucket sizes.
type MetricsAPI interface {
	GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error)
}

// ClientFactory builds the metrics client for one region.
type ClientFactory func(ctx context.Context, region string) (MetricsAPI, error)

// ClientCache holds one metrics client per region for the lifetime of the
// process. Clients are created on first use and never evicted.
type ClientCache struct {
	mu      sync.RWMutex
	clients map[string]MetricsAPI
	factory ClientFactory
}

// NewClientCache creates an empty cache backed by factory.
func NewClientCache(factory ClientFactory) *ClientCache {
	return &ClientCache{
		clients: make(map[string]MetricsAPI),
		factory: factory,
	}
}

// Get returns the client for region, creating it if needed. Concurrent first
// calls for the same region construct exactly one client. Construction errors
// are returned and not cached.
func (c *ClientCache) Get(ctx context.Context, region string) (MetricsAPI, error) {
	c.mu.RLock()
	client, exists := c.clients[region]
	c.mu.RUnlock()
	if exists {
		return client, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if client, exists := c.clients[region]; exists {
		return client, nil
	}

	client, err := c.factory(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("create metrics client for %s: %w", region, err)
	}
	c.clients[region] = client

	logger.Debug().Str("region", region).Msg("Created metrics client")

	return client, nil
}

// Len returns the number of cached regions.
func (c *ClientCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.clients)
}
