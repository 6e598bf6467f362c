package agui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nova-migration/migrate-go/internal/temporal/querier"
	"github.com/nova-migration/migrate-go/internal/temporal/workflows"
	"github.com/nova-migration/migrate-go/internal/uischema"
)

// StreamConfig controls SSE stream behavior.
type StreamConfig struct {
	PollInterval time.Duration
	MaxDuration  time.Duration
}

// DefaultConfig returns sensible defaults. A run makes at most five agent
// calls plus one per test case, each bounded by the activity timeout.
func DefaultConfig() StreamConfig {
	return StreamConfig{
		PollInterval: time.Second,
		MaxDuration:  30 * time.Minute,
	}
}

// StreamHandler serves SSE events for a migration run's state changes.
func StreamHandler(q querier.WorkflowQuerier, cfg StreamConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wfID := r.PathValue("id")
		if wfID == "" {
			http.Error(w, "workflow id required", http.StatusBadRequest)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ctx, cancel := context.WithTimeout(r.Context(), cfg.MaxDuration)
		defer cancel()

		s := &stream{w: w, flusher: flusher, wfID: wfID}
		s.emit(EventRunStarted, nil)

		result, err := q.GetWorkflowState(ctx, wfID)
		if err != nil {
			s.emit(EventRunError, ErrorData{Message: err.Error()})
			return
		}
		s.emit(EventStateSnapshot, StateSnapshotData{
			Step:     string(result.State.Step),
			State:    result.State,
			UISchema: uischema.Build(result.State),
		})
		if result.State.Step.Terminal() {
			s.finish(result)
			return
		}

		ticker := time.NewTicker(cfg.PollInterval)
		defer ticker.Stop()

		prev := result
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cur, err := q.GetWorkflowState(ctx, wfID)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					s.emit(EventRunError, ErrorData{Message: err.Error()})
					return
				}

				// One STEP pair per step entered, even if a poll skipped past several.
				steps := cur.State.Steps
				if len(steps) > len(prev.State.Steps) {
					last := prev.State.Step
					for _, step := range steps[len(prev.State.Steps):] {
						s.emit(EventStepFinished, StepData{Step: string(last)})
						s.emit(EventStepStarted, StepData{Step: string(step)})
						last = step
					}
				}

				if patches := diffState(prev.State, cur.State); len(patches) > 0 {
					s.emit(EventStateDelta, StateDeltaData{
						Step:     string(cur.State.Step),
						Patches:  patches,
						UISchema: uischema.Build(cur.State),
					})
				}

				if cur.State.Step.Terminal() {
					s.finish(cur)
					return
				}
				prev = cur
			}
		}
	}
}

type stream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	wfID    string
}

func (s *stream) emit(t EventType, data any) {
	writeSSE(s.w, s.flusher, Event{
		Type:       t,
		Timestamp:  time.Now().UTC(),
		WorkflowID: s.wfID,
		Data:       data,
	})
}

func (s *stream) finish(result *workflows.WorkflowResult) {
	s.emit(EventRunFinished, FinishedData{
		Reason: string(result.Reason),
		Step:   string(result.State.Step),
		Error:  result.State.Error,
	})
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	flusher.Flush()
}
