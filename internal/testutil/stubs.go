// Package testutil provides fixture-backed fakes of the hosted agents. The
// worker runs on them in stub mode and tests use them to drive full runs.
package testutil

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/nova-migration/migrate-go/internal/agent"
	"github.com/nova-migration/migrate-go/internal/config"
)

//go:embed fixtures/*.json
var embedded embed.FS

// StubAgents satisfies agent.Caller. Each agent id in IDs is answered with
// the recorded response envelope for its role, which is decoded exactly as
// a live response would be.
type StubAgents struct {
	IDs agent.Registry
	// FixturesDir overrides the embedded fixtures when non-empty.
	FixturesDir string
	// FailTests makes the executor fail for these test ids.
	FailTests map[string]bool
	// Errors returns a transport error for an agent id.
	Errors map[string]error
	// Responses replaces the fixture envelope for an agent id.
	Responses map[string]string

	mu    sync.Mutex
	calls []string
}

// Call implements agent.Caller.
func (s *StubAgents) Call(_ context.Context, agentID string, message any) (json.RawMessage, error) {
	s.mu.Lock()
	s.calls = append(s.calls, agentID)
	s.mu.Unlock()

	if err := s.Errors[agentID]; err != nil {
		return nil, err
	}

	if agentID == s.IDs.Executor && len(s.FailTests) > 0 {
		msg, err := json.Marshal(message)
		if err != nil {
			return nil, err
		}
		if id := gjson.GetBytes(msg, "test_case.test_id").String(); s.FailTests[id] {
			return nil, &agent.StatusError{AgentID: agentID, StatusCode: 500}
		}
	}

	body, ok := s.Responses[agentID]
	if !ok {
		data, err := s.fixture(agentID)
		if err != nil {
			return nil, err
		}
		body = string(data)
	}
	return agent.DecodeEnvelope([]byte(body))
}

// Calls returns the agent ids called so far, in order.
func (s *StubAgents) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *StubAgents) fixture(agentID string) ([]byte, error) {
	name, err := s.fixtureName(agentID)
	if err != nil {
		return nil, err
	}
	if s.FixturesDir != "" {
		return os.ReadFile(filepath.Join(s.FixturesDir, name))
	}
	return embedded.ReadFile("fixtures/" + name)
}

func (s *StubAgents) fixtureName(agentID string) (string, error) {
	switch agentID {
	case s.IDs.TestGenerator:
		return "test_generator.json", nil
	case s.IDs.PromptMigrator:
		return "prompt_migrator.json", nil
	case s.IDs.Executor:
		return "executor.json", nil
	case s.IDs.Comparator:
		return "comparator.json", nil
	case s.IDs.PromptImprover:
		return "prompt_improver.json", nil
	}
	return "", fmt.Errorf("stub agents: unknown agent id %q", agentID)
}

// Registry returns the stub-mode registry of distinct agent ids.
func Registry() agent.Registry {
	return config.StubRegistry
}

// NewStubService returns an agent.Service backed by stub agents.
func NewStubService() (*agent.Service, *StubAgents) {
	stub := &StubAgents{IDs: Registry()}
	return agent.NewService(stub, stub.IDs), stub
}
