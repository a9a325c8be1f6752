package supervisor

// Language tags returned by DetectLanguage.
const (
	LanguageVietnamese = "vi"
	LanguageEnglish    = "en"
)

// Latin-1 Supplement through Latin Extended Additional.
const (
	diacriticLow  = '\u00C0'
	diacriticHigh = '\u1EF9'
)

// DetectLanguage reports LanguageVietnamese when any rune of text lies in
// U+00C0..U+1EF9 and LanguageEnglish otherwise. Other accented Latin
// scripts fall in the same range and are reported as Vietnamese.
func DetectLanguage(text string) string {
	for _, r := range text {
		if r >= diacriticLow && r <= diacriticHigh {
			return LanguageVietnamese
		}
	}
	return LanguageEnglish
}

type clarification struct {
	multiIntent string
	unclear     string
}

var clarifications = map[string]clarification{
	LanguageEnglish: {
		multiIntent: "I detected multiple questions. Please ask one question at a time so I can help you better.",
		unclear:     "I'm not sure what you're asking about. Can you please rephrase your question?",
	},
	LanguageVietnamese: {
		multiIntent: "Tôi phát hiện nhiều câu hỏi. Vui lòng hỏi từng câu một để tôi có thể hỗ trợ bạn tốt hơn.",
		unclear:     "Tôi chưa hiểu rõ câu hỏi của bạn. Bạn có thể diễn đạt lại được không?",
	},
}

func clarificationFor(lang string) clarification {
	if c, ok := clarifications[lang]; ok {
		return c
	}
	return clarifications[LanguageEnglish]
}

func languageHint(lang string) string {
	if lang == LanguageVietnamese {
		return "The user is writing in Vietnamese."
	}
	return "The user is writing in English."
}
