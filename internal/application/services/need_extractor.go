package services

import (
	"context"
	"encoding/json"
	"os"
	"regexp"
	"sync"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// defaultNeedPatterns is the declarative need-detection table: need kind to
// case-insensitive patterns covering English and Malay phrasing. Short tokens
// carry word boundaries so fragments of unrelated words do not trigger
// ("oku" must not fire on "dokumen"). Negation is deliberately not handled:
// "no pets" still flags pet_area, matching how reports from the field are
// worded.
var defaultNeedPatterns = map[entities.NeedKind][]string{
	entities.NeedGroundFloor: {
		`wheelchair`, `kerusi roda`,
		`bedridden`, `terlantar`,
		`cannot climb`, `can't climb`, `tidak boleh naik`, `tak boleh naik`,
		`grandmother`, `grandfather`, `nenek`, `\bdatuk\b`, `\batuk\b`,
		`elderly`, `warga emas`,
		`ground floor`, `tingkat bawah`,
	},
	entities.NeedOKUToilets: {
		`\boku\b`, `tandas oku`,
		`disabled toilet`, `accessible toilet`,
	},
	entities.NeedPetArea: {
		`\bcats?\b`, `\bdogs?\b`, `\bpets?\b`,
		`kucing`, `anjing`, `haiwan`, `binatang`,
	},
	entities.NeedFamilyRoom: {
		`\bbaby\b`, `babies`, `infant`, `\bbayi\b`,
		`breastfeed`, `menyusu`,
		`family room`, `bilik keluarga`,
		`privacy`, `privasi`,
	},
}

var (
	needCounterOnce sync.Once
	needCounter     metric.Int64Counter
)

// NeedExtractor detects accessibility needs in free-text queries via the
// declarative pattern table. Extraction is pure: same query, same flags.
type NeedExtractor struct {
	patterns map[entities.NeedKind][]*regexp.Regexp
}

// NewNeedExtractor creates an extractor with the compiled-in pattern table.
func NewNeedExtractor() *NeedExtractor {
	e, err := newNeedExtractor(defaultNeedPatterns)
	if err != nil {
		// The default table is static and covered by tests; a compile
		// failure here is a programming error.
		panic(err)
	}
	return e
}

// NewNeedExtractorFromFile creates an extractor from a JSON pattern file of
// the form {"ground_floor": ["pattern", ...], ...}. Kinds missing from the
// file keep the compiled-in defaults; unknown kinds are ignored.
func NewNeedExtractorFromFile(path string) (*NeedExtractor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	merged := make(map[entities.NeedKind][]string, len(defaultNeedPatterns))
	for kind, pats := range defaultNeedPatterns {
		merged[kind] = pats
	}
	for _, kind := range entities.AllNeedKinds() {
		if pats, ok := raw[string(kind)]; ok {
			merged[kind] = pats
		}
	}
	return newNeedExtractor(merged)
}

func newNeedExtractor(table map[entities.NeedKind][]string) (*NeedExtractor, error) {
	compiled := make(map[entities.NeedKind][]*regexp.Regexp, len(table))
	for kind, pats := range table {
		for _, p := range pats {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return nil, err
			}
			compiled[kind] = append(compiled[kind], re)
		}
	}
	return &NeedExtractor{patterns: compiled}, nil
}

// Extract returns all four need flags for the query. A kind is set when any
// of its patterns occurs anywhere in the text. Never fails.
func (e *NeedExtractor) Extract(query string) entities.NeedFlags {
	flags := make(entities.NeedFlags, len(entities.AllNeedKinds()))
	for _, kind := range entities.AllNeedKinds() {
		flags[kind] = false
		for _, re := range e.patterns[kind] {
			if re.MatchString(query) {
				flags[kind] = true
				break
			}
		}
	}
	e.recordDetectedNeeds(flags)
	return flags
}

func initNeedCounter() {
	meter := otel.Meter("github.com/banjirlab/relief-assistant/need_extractor")
	counter, err := meter.Int64Counter(
		"needs.detected.count",
		metric.WithDescription("Count of need flags detected in user queries"),
	)
	if err == nil {
		needCounter = counter
	}
}

func (e *NeedExtractor) recordDetectedNeeds(flags entities.NeedFlags) {
	active := flags.Active()
	if len(active) == 0 {
		return
	}
	needCounterOnce.Do(initNeedCounter)
	if needCounter == nil {
		return
	}
	for _, kind := range active {
		needCounter.Add(
			context.Background(),
			1,
			metric.WithAttributes(attribute.String("need.kind", string(kind))),
		)
	}
}
