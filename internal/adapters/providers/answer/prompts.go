package answer

// promptTemplate holds the system prompt and user-message format for one
// language. The user format takes the retrieved context, then the query.
type promptTemplate struct {
	System string
	User   string
}

var promptTemplates = map[string]promptTemplate{
	"en": {
		System: "You are a Smart Flood Mitigation Assistant. Answer the user's question ONLY based on the CONTEXT provided. DO NOT fabricate information. Always cite the Source. Maintain a helpful and professional tone.",
		User:   "CONTEXT: %s\n\nUSER QUESTION: %s\n\nANSWER:",
	},
	"ms": {
		System: "Anda adalah Pembantu Mitigasi Banjir Pintar. Jawab soalan pengguna HANYA berdasarkan KONTEKS yang diberikan. JANGAN mereka-reka jawapan. Sentiasa nyatakan Sumber. Kekalkan nada yang membantu dan profesional.",
		User:   "KONTEKS: %s\n\nPERTANYAAN PENGGUNA: %s\n\nJAWAPAN:",
	},
}

func promptFor(language string) promptTemplate {
	if tpl, ok := promptTemplates[language]; ok {
		return tpl
	}
	return promptTemplates["en"]
}
