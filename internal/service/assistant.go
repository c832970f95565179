package service

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/TristanBrian/MamaCare/internal/i18n"
)

type AssistantInput struct {
	Query string `json:"query" validate:"max=1000"`
}

type AssistantReply struct {
	Response string `json:"response"`
}

type assistantRule struct {
	key      string
	keywords []string
}

var assistantRules = []assistantRule{
	{key: "assistant.symptoms", keywords: []string{"symptom", "dalili"}},
	{key: "assistant.identity", keywords: []string{"who are you", "your name", "wewe ni nani", "jina lako"}},
	{key: "assistant.due_date", keywords: []string{"due date", "tarehe ya kujifungua"}},
}

// Reply answers a free-text question with the first matching canned answer,
// echoing the question when nothing matches.
func Reply(input AssistantInput, tag language.Tag) (AssistantReply, error) {
	if err := validateStruct(input); err != nil {
		return AssistantReply{}, err
	}
	query := strings.ToLower(strings.TrimSpace(input.Query))
	for _, rule := range assistantRules {
		for _, kw := range rule.keywords {
			if strings.Contains(query, kw) {
				return AssistantReply{Response: i18n.T(tag, rule.key)}, nil
			}
		}
	}
	return AssistantReply{Response: i18n.T(tag, "assistant.fallback", query)}, nil
}
