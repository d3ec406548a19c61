package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/womenwealthwave/wealthwave/internal/llm"
)

// financeKeywords gate the assistant to personal-finance topics. Matching is
// a case-insensitive substring test, so "investing" matches "invest".
var financeKeywords = []string{
	"money", "finance", "invest", "saving", "budget", "loan", "credit", "bank",
	"insurance", "tax", "scheme", "fund", "stock", "mutual", "sip", "ppf", "fd",
	"salary", "income", "expense", "debt", "emi", "interest", "retirement",
	"pension", "business", "entrepreneur", "profit", "loss", "account", "payment",
	"rupee", "rupees", "₹", "wealth", "asset", "liability", "financial",
	"gold", "property", "real estate", "crypto", "trading", "nps", "epf",
}

// ScopeReply is returned for messages outside the finance scope.
const ScopeReply = "I'm WomenWealthWave, a specialized financial literacy assistant for women. " +
	"I can only help with finance-related topics like:\n\n" +
	"💰 Budgeting and saving\n" +
	"📈 Investing (mutual funds, stocks, SIPs)\n" +
	"🏦 Banking, loans, and credit\n" +
	"🛡️ Insurance and retirement planning\n" +
	"🎯 Government schemes for women\n" +
	"💼 Women's entrepreneurship\n\n" +
	"Please ask me a question about personal finance or financial literacy!"

// noContext is used when no reference material accompanies a question.
const noContext = "No context. Use general finance knowledge."

// IsFinanceRelated reports whether message mentions any finance keyword.
func IsFinanceRelated(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range financeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// SystemPrompt builds the assistant's instructions around optional context.
func SystemPrompt(context string) string {
	if strings.TrimSpace(context) == "" {
		context = noContext
	}
	return "You are WomenWealthWave, an AI financial advisor for women. " +
		"Answer ONLY finance questions: budgeting, investing, banking, loans, schemes, business.\n" +
		"Keep answers concise: 20-400 words maximum. Be clear and direct.\n" +
		"VERY IMPORTANT: You must ALWAYS follow this exact output format.\n" +
		"1) First, detect the user's language from their message.\n" +
		"2) If the detected language is NOT English, reply in EXACTLY TWO SECTIONS:\n" +
		"   English Response:\n" +
		"   <clear English answer here>\n\n" +
		"   Pronunciation (<Detected Language>):\n" +
		"   <write the SAME English answer again, but transliterated in Latin letters so it sounds natural in that language (e.g. Hinglish for Hindi, Kanglish for Kannada).>\n" +
		"3) If the user writes in English, reply with ONLY the first section:\n" +
		"   English Response:\n" +
		"   <clear English answer here>\n\n" +
		"Do NOT add any extra sections, titles, or explanations.\n\n" +
		"Context:\n" + context + "\n\n" +
		"Use the context above. Be brief and helpful."
}

// Assistant answers finance questions locally through an LLM provider.
type Assistant struct {
	provider llm.LLMProvider
	opts     *llm.ChatOptions
	log      logrus.FieldLogger
}

// NewAssistant creates an assistant. opts are passed to every provider call
// and may be nil.
func NewAssistant(provider llm.LLMProvider, opts *llm.ChatOptions, log logrus.FieldLogger) *Assistant {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	return &Assistant{provider: provider, opts: opts, log: log.WithField("component", "chat")}
}

// Submit implements Submitter. Blank messages fail with ErrEmptyMessage and
// off-topic messages get ScopeReply without calling the provider.
func (a *Assistant) Submit(ctx context.Context, message string, history []Message) (*Response, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	if !IsFinanceRelated(message) {
		a.log.Debug("message outside finance scope")
		return &Response{Response: ScopeReply, Sources: []string{}}, nil
	}

	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.SystemMessage(SystemPrompt("")))
	for _, m := range history {
		switch m.Role {
		case RoleUser:
			msgs = append(msgs, llm.UserMessage(m.Content))
		case RoleAssistant:
			msgs = append(msgs, llm.AssistantMessage(m.Content))
		}
	}
	msgs = append(msgs, llm.UserMessage(message))

	resp, err := a.provider.Chat(ctx, msgs, a.opts)
	if err != nil {
		a.log.WithError(err).Error("assistant reply failed")
		return nil, fmt.Errorf("generating response: %w", err)
	}

	a.log.WithFields(logrus.Fields{
		"provider": resp.Provider,
		"tokens":   resp.Usage.TotalTokens,
		"latency":  resp.Latency.String(),
	}).Info("assistant replied")

	return &Response{Response: resp.Content, Sources: []string{}}, nil
}
