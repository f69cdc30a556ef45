package services

import (
	"fmt"
	"strings"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
)

// Supported language codes. Anything else resolves to English.
const (
	LangEnglish = "en"
	LangMalay   = "ms"
)

// NormalizeLanguage maps a request language code onto a supported one.
// Unrecognized codes default to English, never an error.
func NormalizeLanguage(code string) string {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case LangMalay, "malay", "bm", "bahasa":
		return LangMalay
	default:
		return LangEnglish
	}
}

// needPhrases renders one (need, verdict) assessment per language. Reasons
// shown to users are assembled from these fragments at the response boundary;
// the engine itself only deals in structured assessments.
var needPhrases = map[string]map[entities.NeedKind]map[entities.NeedVerdict]string{
	LangEnglish: {
		entities.NeedGroundFloor: {
			entities.VerdictMatched: "ground-floor space available",
			entities.VerdictFailed:  "stairs-only access, not suitable for limited mobility",
			entities.VerdictUnknown: "ground-floor availability unconfirmed",
		},
		entities.NeedOKUToilets: {
			entities.VerdictMatched: "OKU toilets available",
			entities.VerdictFailed:  "no OKU facilities",
			entities.VerdictUnknown: "OKU toilet availability unconfirmed",
		},
		entities.NeedPetArea: {
			entities.VerdictMatched: "designated pet area available",
			entities.VerdictFailed:  "pets are not allowed",
			entities.VerdictUnknown: "pet policy unconfirmed",
		},
		entities.NeedFamilyRoom: {
			entities.VerdictMatched: "family room available",
			entities.VerdictFailed:  "open hall only, no private family space",
			entities.VerdictUnknown: "family room availability unconfirmed",
		},
	},
	LangMalay: {
		entities.NeedGroundFloor: {
			entities.VerdictMatched: "ruang tingkat bawah tersedia",
			entities.VerdictFailed:  "akses tangga sahaja, tidak sesuai untuk mobiliti terhad",
			entities.VerdictUnknown: "ketersediaan tingkat bawah belum disahkan",
		},
		entities.NeedOKUToilets: {
			entities.VerdictMatched: "tandas OKU tersedia",
			entities.VerdictFailed:  "tiada kemudahan OKU",
			entities.VerdictUnknown: "ketersediaan tandas OKU belum disahkan",
		},
		entities.NeedPetArea: {
			entities.VerdictMatched: "kawasan haiwan peliharaan tersedia",
			entities.VerdictFailed:  "haiwan peliharaan tidak dibenarkan",
			entities.VerdictUnknown: "polisi haiwan peliharaan belum disahkan",
		},
		entities.NeedFamilyRoom: {
			entities.VerdictMatched: "bilik keluarga tersedia",
			entities.VerdictFailed:  "dewan terbuka sahaja, tiada ruang keluarga persendirian",
			entities.VerdictUnknown: "ketersediaan bilik keluarga belum disahkan",
		},
	},
}

// NeedPhrase renders a single assessment in the given language. Unknown
// kinds or verdicts degrade to a generic fragment rather than failing.
func NeedPhrase(lang string, a entities.NeedAssessment) string {
	lang = NormalizeLanguage(lang)
	if byKind, ok := needPhrases[lang]; ok {
		if byVerdict, ok := byKind[a.Kind]; ok {
			if phrase, ok := byVerdict[a.Verdict]; ok {
				return phrase
			}
		}
	}
	return fmt.Sprintf("%s: %s", a.Kind, strings.ToLower(string(a.Verdict)))
}

// LiveCriticalPhrase renders the consensus-critical prefix: count confirmed
// reports inside the freshness window.
func LiveCriticalPhrase(lang string, count int, latestStatus string) string {
	if NormalizeLanguage(lang) == LangMalay {
		return fmt.Sprintf("KRITIKAL: %d laporan terkini menunjukkan masalah serius (terkini: %s). Elakkan lokasi ini", count, latestStatus)
	}
	return fmt.Sprintf("CRITICAL: %d recent reports indicate a serious problem (latest: %s). Avoid this location", count, latestStatus)
}

// LiveUnverifiedPhrase renders the single-critical-report warning prefix.
func LiveUnverifiedPhrase(lang string, latestStatus string) string {
	if NormalizeLanguage(lang) == LangMalay {
		return fmt.Sprintf("AMARAN: satu laporan %s belum disahkan, menunggu pengesahan", latestStatus)
	}
	return fmt.Sprintf("WARNING: one unverified %s report, awaiting confirmation", latestStatus)
}

// LiveLatestReportPhrase renders the non-critical latest-report prefix.
func LiveLatestReportPhrase(lang string, status string) string {
	if NormalizeLanguage(lang) == LangMalay {
		return fmt.Sprintf("AMARAN: laporan terkini menyatakan %s", status)
	}
	return fmt.Sprintf("WARNING: latest report says %s", status)
}

// NoRecentReportPhrase renders the notice appended when no live-status text
// was applied to a recommendation.
func NoRecentReportPhrase(lang string) string {
	if NormalizeLanguage(lang) == LangMalay {
		return "tiada laporan status terkini untuk pusat ini"
	}
	return "no recent status reports for this center"
}

// FallbackMessagePhrase explains the nearest-centers listing served when the
// query expressed no recognizable need.
func FallbackMessagePhrase(lang string) string {
	if NormalizeLanguage(lang) == LangMalay {
		return "Tiada keperluan khusus dikesan. Menunjukkan pusat pemindahan terdekat."
	}
	return "No specific needs detected. Showing the nearest centers."
}

// AnswerNotFoundPhrase is the canned answer when retrieval finds nothing.
func AnswerNotFoundPhrase(lang string) string {
	if NormalizeLanguage(lang) == LangMalay {
		return "Saya tidak dapat mencari maklumat yang berkaitan dengan soalan anda dalam dokumen yang disediakan. (Sumber: N/A)"
	}
	return "I could not find relevant information for your query in the provided documents. (Source: N/A)"
}
