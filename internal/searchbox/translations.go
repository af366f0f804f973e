package searchbox

// Translations holds the user-facing strings of the search box. Empty
// fields fall back to the defaults listed on each field.
type Translations struct {
	// ClearButtonTitle defaults to "Clear".
	ClearButtonTitle string `yaml:"clear_button_title"`
	// ClearButtonAriaLabel defaults to "Clear the query".
	ClearButtonAriaLabel string `yaml:"clear_button_aria_label"`
	// CloseButtonText defaults to "Close".
	CloseButtonText string `yaml:"close_button_text"`
	// CloseButtonAriaLabel defaults to "Close".
	CloseButtonAriaLabel string `yaml:"close_button_aria_label"`
	// PlaceholderText defaults to "Search docs".
	PlaceholderText string `yaml:"placeholder_text"`
	// PlaceholderTextAskAI defaults to "Ask another question...".
	PlaceholderTextAskAI string `yaml:"placeholder_text_ask_ai"`
	// PlaceholderTextAskAIStreaming defaults to "Answering...".
	PlaceholderTextAskAIStreaming string `yaml:"placeholder_text_ask_ai_streaming"`
	// EnterKeyHint defaults to "search".
	EnterKeyHint string `yaml:"enter_key_hint"`
	// EnterKeyHintAskAI defaults to "enter".
	EnterKeyHintAskAI string `yaml:"enter_key_hint_ask_ai"`
	// SearchInputLabel defaults to "Search".
	SearchInputLabel string `yaml:"search_input_label"`
	// BackToKeywordSearchButtonText defaults to "Back to keyword search".
	BackToKeywordSearchButtonText string `yaml:"back_to_keyword_search_button_text"`
	// BackToKeywordSearchButtonAriaLabel defaults to "Back to keyword search".
	BackToKeywordSearchButtonAriaLabel string `yaml:"back_to_keyword_search_button_aria_label"`
	// AskAIButtonText defaults to "Ask AI".
	AskAIButtonText string `yaml:"ask_ai_button_text"`
}

// DefaultTranslations returns the built-in strings.
func DefaultTranslations() Translations {
	return Translations{
		ClearButtonTitle:                   "Clear",
		ClearButtonAriaLabel:               "Clear the query",
		CloseButtonText:                    "Close",
		CloseButtonAriaLabel:               "Close",
		PlaceholderText:                    "Search docs",
		PlaceholderTextAskAI:               "Ask another question...",
		PlaceholderTextAskAIStreaming:      "Answering...",
		EnterKeyHint:                       "search",
		EnterKeyHintAskAI:                  "enter",
		SearchInputLabel:                   "Search",
		BackToKeywordSearchButtonText:      "Back to keyword search",
		BackToKeywordSearchButtonAriaLabel: "Back to keyword search",
		AskAIButtonText:                    "Ask AI",
	}
}

// WithDefaults returns t with every empty field filled from the defaults.
func (t Translations) WithDefaults() Translations {
	d := DefaultTranslations()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&t.ClearButtonTitle, d.ClearButtonTitle)
	fill(&t.ClearButtonAriaLabel, d.ClearButtonAriaLabel)
	fill(&t.CloseButtonText, d.CloseButtonText)
	fill(&t.CloseButtonAriaLabel, d.CloseButtonAriaLabel)
	fill(&t.PlaceholderText, d.PlaceholderText)
	fill(&t.PlaceholderTextAskAI, d.PlaceholderTextAskAI)
	fill(&t.PlaceholderTextAskAIStreaming, d.PlaceholderTextAskAIStreaming)
	fill(&t.EnterKeyHint, d.EnterKeyHint)
	fill(&t.EnterKeyHintAskAI, d.EnterKeyHintAskAI)
	fill(&t.SearchInputLabel, d.SearchInputLabel)
	fill(&t.BackToKeywordSearchButtonText, d.BackToKeywordSearchButtonText)
	fill(&t.BackToKeywordSearchButtonAriaLabel, d.BackToKeywordSearchButtonAriaLabel)
	fill(&t.AskAIButtonText, d.AskAIButtonText)
	return t
}

// enterLabel returns the translated label for an enter-key hint.
func (t Translations) enterLabel(hint string) string {
	if hint == "enter" {
		return t.EnterKeyHintAskAI
	}
	return t.EnterKeyHint
}
