// Package tools implements the functions the model may call during a chat
// turn and the dispatcher that routes a tool call to its handler.
package tools

import (
	"context"

	"github.com/pkg/errors"

	"github.com/grambharat/gramsathi/ai/llm"
	"github.com/grambharat/gramsathi/store"
)

// Kind identifies a supported tool. The set is closed: a call naming
// anything else is rejected by the dispatcher, never silently dropped.
type Kind string

const (
	KindLoanEligibility Kind = "check_loan_eligibility"
	KindSaveMemory      Kind = "save_to_memory"
)

// ErrUnknownTool marks a call to a tool the dispatcher does not know.
var ErrUnknownTool = errors.New("unknown tool")

// Result is the outcome of one tool execution. Payload is the JSON document
// handed back to the model as the tool turn; Status is the human-readable
// progress line relayed to the client. MemorySaved triggers the client-side
// confirmation event.
type Result struct {
	Payload     string
	Status      string
	MemorySaved bool
}

// Dispatcher routes tool calls to their typed handlers.
type Dispatcher struct {
	loan   *LoanEligibilityTool
	memory *MemorySaveTool
}

func NewDispatcher(st *store.Store) *Dispatcher {
	return &Dispatcher{
		loan:   &LoanEligibilityTool{store: st},
		memory: &MemorySaveTool{store: st},
	}
}

// Descriptors returns the tool declarations advertised to the model.
func (d *Dispatcher) Descriptors() []llm.ToolDescriptor {
	return []llm.ToolDescriptor{
		d.loan.Descriptor(),
		d.memory.Descriptor(),
	}
}

// Dispatch executes one tool call.
func (d *Dispatcher) Dispatch(ctx context.Context, call llm.ToolCall) (*Result, error) {
	switch Kind(call.Function.Name) {
	case KindLoanEligibility:
		return d.loan.Run(ctx, call.Function.Arguments)
	case KindSaveMemory:
		return d.memory.Run(ctx, call.Function.Arguments)
	default:
		return nil, errors.Wrapf(ErrUnknownTool, "%q", call.Function.Name)
	}
}
