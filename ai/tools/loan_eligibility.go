package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/grambharat/gramsathi/ai/llm"
	"github.com/grambharat/gramsathi/finance"
	"github.com/grambharat/gramsathi/store"
)

// LoanEligibilityTool runs the deterministic eligibility engine over a
// stored financial profile. Failures the model should explain to the user
// (unknown person, bad arguments) come back as in-band payloads with
// success=false, never as Go errors.
type LoanEligibilityTool struct {
	store *store.Store
}

type loanEligibilityArgs struct {
	PersonName string  `json:"person_name"`
	LoanAmount float64 `json:"loan_amount"`
}

func (t *LoanEligibilityTool) Descriptor() llm.ToolDescriptor {
	return llm.ToolDescriptor{
		Name: string(KindLoanEligibility),
		Description: "Check if a person is eligible for a loan based on their financial profile. " +
			"Use this when someone asks about loan eligibility, loan approval, or if someone can get a loan.",
		Parameters: `{
			"type": "object",
			"properties": {
				"person_name": {
					"type": "string",
					"description": "The full name of the person (e.g., 'Ram Vilas', 'Sita Devi')"
				},
				"loan_amount": {
					"type": "number",
					"description": "The requested loan amount in Indian Rupees (e.g., 500000 for 5 lakhs)"
				}
			},
			"required": ["person_name", "loan_amount"]
		}`,
	}
}

func (t *LoanEligibilityTool) Run(ctx context.Context, arguments string) (*Result, error) {
	var args loanEligibilityArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil || strings.TrimSpace(args.PersonName) == "" || args.LoanAmount <= 0 {
		slog.Warn("loan tool: bad arguments", "arguments", arguments)
		return failure("A person name and a positive loan amount are required."), nil
	}

	slog.Info("loan tool: checking eligibility", "person", args.PersonName, "amount", args.LoanAmount)

	profile, err := t.store.FinancialProfile(ctx, args.PersonName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return failure(t.notFoundMessage(ctx, args.PersonName)), nil
		}
		return nil, errors.Wrap(err, "load financial profile")
	}

	result := finance.Evaluate(profile, args.LoanAmount)
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal eligibility result")
	}

	return &Result{
		Payload: string(payload),
		Status:  fmt.Sprintf("Checking loan eligibility for %s...", args.PersonName),
	}, nil
}

func (t *LoanEligibilityTool) notFoundMessage(ctx context.Context, name string) string {
	msg := fmt.Sprintf("Financial profile not found for %s.", name)
	if available, err := t.store.AvailableProfiles(ctx); err == nil && len(available) > 0 {
		msg += " Available profiles: " + strings.Join(available, ", ")
	}
	return msg
}

func failure(message string) *Result {
	payload, _ := json.Marshal(map[string]any{
		"success": false,
		"error":   message,
	})
	return &Result{
		Payload: string(payload),
		Status:  "Checking loan eligibility...",
	}
}
