package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/warehub-io/warehub/internal/models"
	"github.com/warehub-io/warehub/internal/utils"
)

const responderSystemPrompt = `
You are the ordering assistant of a warehouse supply company, replying on WhatsApp.
Customers ask about product availability, prices and order status, or place orders.

### RULES
1. Reply briefly and politely in the customer's language.
2. Never invent prices, stock numbers or order numbers you were not given.
3. If the request needs a human (complaints, custom pricing, anything ambiguous),
   say a colleague will follow up and lower your confidence.

### OUTPUT FORMAT
Return a JSON object with exactly this structure:
{
  "message": "the reply to send to the customer",
  "confidence": 0.0
}
confidence is your certainty (0..1) that the reply is correct and complete.
`

// Responder drafts WhatsApp replies with Gemini. It satisfies
// whatsapp.Responder.
type Responder struct {
	client *GeminiClient
}

// NewResponder wraps a Gemini client as a conversation responder
func NewResponder(client *GeminiClient) *Responder {
	return &Responder{client: client}
}

type responderOutput struct {
	Message    string  `json:"message"`
	Confidence float64 `json:"confidence"`
}

// Reply drafts an answer to the latest inbound message using the
// conversation history as context
func (r *Responder) Reply(ctx context.Context, userPhone string, history []models.WhatsappMessage, inbound string) (string, float64, error) {
	var b strings.Builder
	b.WriteString(responderSystemPrompt)
	b.WriteString("\n### CONVERSATION\n")

	// Cap the context at the last 20 messages
	start := 0
	if len(history) > 20 {
		start = len(history) - 20
	}
	for _, m := range history[start:] {
		role := "customer"
		if m.Direction == models.DirectionOutbound {
			role = "assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, m.Body)
	}
	fmt.Fprintf(&b, "customer: %s\n", inbound)

	raw, err := r.client.Generate(ctx, b.String())
	if err != nil {
		return "", 0, err
	}

	var out responderOutput
	if err := json.Unmarshal([]byte(utils.SanitizeJSON(raw)), &out); err != nil {
		return "", 0, fmt.Errorf("unparseable model output: %w", err)
	}
	if out.Message == "" {
		return "", 0, fmt.Errorf("model returned an empty message")
	}
	return out.Message, out.Confidence, nil
}
