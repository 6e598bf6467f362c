package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nova-migration/migrate-go/internal/domain"
)

// Registry maps each pipeline step to the id of the agent that serves it.
type Registry struct {
	TestGenerator  string `yaml:"test_generator"`
	PromptMigrator string `yaml:"prompt_migrator"`
	Executor       string `yaml:"executor"`
	Comparator     string `yaml:"comparator"`
	PromptImprover string `yaml:"prompt_improver"`
}

// Validate checks that every step has an agent id.
func (r Registry) Validate() error {
	for name, id := range map[string]string{
		"test_generator":  r.TestGenerator,
		"prompt_migrator": r.PromptMigrator,
		"executor":        r.Executor,
		"comparator":      r.Comparator,
		"prompt_improver": r.PromptImprover,
	} {
		if id == "" {
			return fmt.Errorf("agent registry: %s id is required", name)
		}
	}
	return nil
}

// Caller is the transport used by Service. *Client satisfies it.
type Caller interface {
	Call(ctx context.Context, agentID string, message any) (json.RawMessage, error)
}

// Service runs the five pipeline agents and normalizes their payloads.
type Service struct {
	caller Caller
	ids    Registry
}

// NewService creates a Service.
func NewService(caller Caller, ids Registry) *Service {
	return &Service{caller: caller, ids: ids}
}

// GenerateTestCases asks the test generator for cases covering the original prompt.
func (s *Service) GenerateTestCases(ctx context.Context, in domain.MigrationInput) ([]domain.TestCase, error) {
	payload, err := s.caller.Call(ctx, s.ids.TestGenerator, map[string]string{
		"original_prompt": in.OriginalPrompt,
		"provider":        in.Provider,
		"model":           in.Model,
	})
	if err != nil {
		return nil, err
	}
	return ParseTestCases(payload)
}

// MigratePrompt asks the migrator to rewrite the prompt for the target format.
// A payload with no extractable prompt yields ErrAdapterMismatch.
func (s *Service) MigratePrompt(ctx context.Context, in domain.MigrationInput) (string, error) {
	payload, err := s.caller.Call(ctx, s.ids.PromptMigrator, map[string]string{
		"original_prompt": in.OriginalPrompt,
		"source_provider": in.Provider,
		"source_model":    in.Model,
	})
	if err != nil {
		return "", err
	}
	return ExtractMigratedPrompt(payload)
}

type executorTestCase struct {
	TestID string `json:"test_id"`
	Input  string `json:"input"`
}

// ExecuteTest runs one test case against the migrated prompt on the target model.
// The payload is returned as-is.
func (s *Service) ExecuteTest(ctx context.Context, migratedPrompt string, tc domain.TestCase) (json.RawMessage, error) {
	return s.caller.Call(ctx, s.ids.Executor, struct {
		MigratedPrompt string           `json:"migrated_prompt"`
		TestCase       executorTestCase `json:"test_case"`
	}{
		MigratedPrompt: migratedPrompt,
		TestCase:       executorTestCase{TestID: tc.TestID, Input: tc.Input},
	})
}

// CompareOutputs asks the comparator for performance gaps across all triples.
func (s *Service) CompareOutputs(ctx context.Context, triples []domain.ComparisonTriple) ([]domain.PerformanceGap, error) {
	if triples == nil {
		triples = []domain.ComparisonTriple{}
	}
	payload, err := s.caller.Call(ctx, s.ids.Comparator, triples)
	if err != nil {
		return nil, err
	}
	return ParseGaps(payload)
}

// ImprovePrompt asks the improver to revise currentPrompt given the gaps.
func (s *Service) ImprovePrompt(ctx context.Context, currentPrompt string, gaps []domain.PerformanceGap) (domain.Improvement, error) {
	if gaps == nil {
		gaps = []domain.PerformanceGap{}
	}
	payload, err := s.caller.Call(ctx, s.ids.PromptImprover, map[string]any{
		"current_prompt": currentPrompt,
		"evaluation_results": map[string]any{
			"performance_gaps": gaps,
		},
	})
	if err != nil {
		return domain.Improvement{}, err
	}
	return ParseImprovement(payload)
}
