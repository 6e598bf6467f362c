// Package ratelimit provides per-agent token-bucket limiters and per-requester activity budgets.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// AgentLimiter rate-limits calls per agent id using token buckets. Buckets
// are created on first use so new agents need no registration.
type AgentLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// NewAgentLimiter creates a limiter allowing rps requests per second per
// agent. A non-positive rps disables limiting.
func NewAgentLimiter(rps float64, burst int) *AgentLimiter {
	if burst < 1 {
		burst = 1
	}
	return &AgentLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

func (al *AgentLimiter) limiter(agentID string) *rate.Limiter {
	al.mu.Lock()
	defer al.mu.Unlock()
	l, ok := al.limiters[agentID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(al.rps), al.burst)
		al.limiters[agentID] = l
	}
	return l
}

// Wait blocks until a token is available for the agent, or ctx is cancelled.
func (al *AgentLimiter) Wait(ctx context.Context, agentID string) error {
	if al == nil || al.rps <= 0 {
		return nil
	}
	if err := al.limiter(agentID).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit %s: %w", agentID, err)
	}
	return nil
}
