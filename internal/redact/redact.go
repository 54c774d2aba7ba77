package redact

import (
	"regexp"
	"sort"
	"strings"

	"github.com/OpenBMB/privacyguard/internal/model"
)

// Result is the redactor's output: the redacted text plus whether the
// semantic (model-backed) extraction path produced the entity list, so the
// observer can distinguish semantic from fallback redaction.
type Result struct {
	Text      string
	ModelUsed bool
}

// Redact implements spec §4.5: normalize each entity's type to a
// canonical token via Token, sort entities by value length
// descending, and globally literal-replace every occurrence of each
// value with its token. Returns the final text and verifies (and, if
// necessary, repairs) the no-leak post-condition.
func Redact(content string, entities []model.PrivacyEntity) Result {
	if len(entities) == 0 {
		return Result{Text: content}
	}

	ordered := make([]model.PrivacyEntity, len(entities))
	copy(ordered, entities)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Value) > len(ordered[j].Value)
	})

	result := content
	for _, e := range ordered {
		if e.Value == "" {
			continue
		}
		result = strings.ReplaceAll(result, e.Value, Token(e.Type))
	}

	result = repairLeaks(result, ordered)

	return Result{Text: result, ModelUsed: true}
}

// Token renders the canonical redaction token for a (possibly free-form)
// entity type: case-insensitive lookup against canonicalTypes, falling
// back to an upper-cased, underscored rendering of the raw type.
func Token(rawType string) string {
	key := strings.ToLower(strings.TrimSpace(rawType))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	if canonical, ok := canonicalTypes[key]; ok {
		return "[REDACTED:" + string(canonical) + "]"
	}
	return "[REDACTED:" + strings.ToUpper(key) + "]"
}

// repairLeaks implements the Theorem 2 post-condition from spec §4.5: the
// output must not contain any entity value as a substring. If a value
// survives (because it was embedded inside another, already-replaced
// entity's value, breaking the literal match), reapply replacement for
// the failing value first.
func repairLeaks(text string, ordered []model.PrivacyEntity) string {
	for pass := 0; pass < len(ordered)+1; pass++ {
		leaked := CheckLeaks(text, ordered)
		if len(leaked) == 0 {
			return text
		}
		for _, e := range leaked {
			text = strings.ReplaceAll(text, e.Value, Token(e.Type))
		}
	}
	return text
}

// CheckLeaks returns the subset of entities whose literal value is still
// present in text.
func CheckLeaks(text string, entities []model.PrivacyEntity) []model.PrivacyEntity {
	var leaked []model.PrivacyEntity
	for _, e := range entities {
		if e.Value != "" && strings.Contains(text, e.Value) {
			leaked = append(leaked, e)
		}
	}
	return leaked
}

// fallbackPatterns are the rule-based substitutions applied when the
// local model is disabled or its extraction call fails (spec §4.5
// fallback path).
var fallbackPatterns = []struct {
	re   *regexp.Regexp
	kind model.RedactionType
}{
	{regexp.MustCompile(`sk-[A-Za-z0-9]{10,}`), model.TypeSecret},
	{regexp.MustCompile(`(?i)token[ \t]*=[ \t]*\S+`), model.TypeSecret},
	{regexp.MustCompile(`(?i)password[ \t]*=[ \t]*\S+`), model.TypeSecret},
}

// FallbackRedact applies the ordered regex substitutions used when no
// model-backed extraction is available, plus any operator-configured
// extra patterns. ModelUsed is always false.
func FallbackRedact(content string, extra []CompiledPattern) Result {
	result := content
	for _, p := range fallbackPatterns {
		kind := p.kind
		result = p.re.ReplaceAllStringFunc(result, func(string) string {
			return "[REDACTED:" + string(kind) + "]"
		})
	}
	for _, p := range extra {
		typ := p.Type
		result = p.Regex.ReplaceAllStringFunc(result, func(string) string {
			return Token(typ)
		})
	}
	return Result{Text: result, ModelUsed: false}
}
