// Package assistant answers in-app support chat. Fraud reports are escalated
// without calling the model; everything else is forwarded to an
// OpenAI-compatible endpoint.
package assistant

import (
	"context"
	"strings"

	applog "finsmart/internal/log"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	CategoryFraud   = "fraud"
	CategorySupport = "support"

	maxContextMessages = 10
)

var (
	fraudKeywords = []string{
		"suspicious transaction", "unauthorized access", "someone accessed",
		"account compromised", "strange activity", "fraud", "scam", "hack",
		"stolen", "identity theft", "phishing",
	}
	frustrationKeywords = []string{
		"frustrated", "angry", "terrible", "awful", "hate", "worst", "useless",
	}
)

const fraudReply = "I understand you have security concerns. For your account safety, I'm escalating this to our security team. " +
	"Please contact our fraud helpline immediately or email security@finsmart.com. " +
	"In the meantime, consider changing your password and reviewing recent transactions."

// UnavailableReply is shown when the model cannot be reached.
const UnavailableReply = "I'm having trouble processing your request right now. Please try again or contact our support team."

const systemPrompt = `You are FinSmart Assistant, a helpful chatbot for a personal finance app.
You help with budgets, transaction categories, savings goals, bill reminders and subscriptions,
and explain how to use the dashboard. Be concise, professional and security-conscious.
If the user seems frustrated or needs complex help, suggest contacting live support.`

type ChatRequest struct {
	Message string    `json:"message"`
	Context []Message `json:"context,omitempty"`
}

type ChatResponse struct {
	Response string `json:"response"`
	Escalate bool   `json:"escalate"`
	Priority string `json:"priority"`
	Category string `json:"category"`
}

type Assistant struct {
	client CompletionClient
	logger *applog.Logger
}

// New returns an assistant; a nil client makes non-fraud messages fail with
// ErrNotConfigured.
func New(client CompletionClient, logger *applog.Logger) *Assistant {
	return &Assistant{client: client, logger: logger.WithComponent(applog.ComponentAssistant)}
}

func (a *Assistant) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return ChatResponse{}, ErrEmptyMessage
	}
	lower := strings.ToLower(msg)

	if containsAny(lower, fraudKeywords) {
		a.logger.WarnContext(ctx, "Chat escalated as fraud concern")
		return ChatResponse{Response: fraudReply, Escalate: true, Priority: PriorityHigh, Category: CategoryFraud}, nil
	}
	if a.client == nil {
		return ChatResponse{}, ErrNotConfigured
	}

	text, err := a.client.Complete(ctx, BuildMessages(msg, req.Context))
	if err != nil {
		return ChatResponse{}, err
	}

	frustrated := containsAny(lower, frustrationKeywords)
	priority := PriorityLow
	if frustrated {
		priority = PriorityMedium
	}
	return ChatResponse{Response: text, Escalate: frustrated, Priority: priority, Category: CategorySupport}, nil
}

// BuildMessages prepends the system prompt and keeps the last ten context
// turns. Context turns with roles other than user and assistant are dropped.
func BuildMessages(message string, history []Message) []Message {
	var kept []Message
	for _, m := range history {
		if m.Role == "user" || m.Role == "assistant" {
			kept = append(kept, m)
		}
	}
	if len(kept) > maxContextMessages {
		kept = kept[len(kept)-maxContextMessages:]
	}

	out := make([]Message, 0, len(kept)+2)
	out = append(out, Message{Role: "system", Content: systemPrompt})
	out = append(out, kept...)
	return append(out, Message{Role: "user", Content: message})
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
