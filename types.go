package xlate

// ContentRole classifies a translation unit's function within its document.
// The role steers style policy and translation-memory partitioning.
type ContentRole string

const (
	// RoleTitle is a headline or heading fragment.
	RoleTitle ContentRole = "title"
	// RoleBody is long-form running text.
	RoleBody ContentRole = "body"
	// RoleShortForm is a short fragment without sentence structure
	// (labels, captions, excerpts).
	RoleShortForm ContentRole = "short-form"
	// RoleMetadata is a platform metadata field (SEO title, description,
	// slug). Its semantics are opaque to the pipeline.
	RoleMetadata ContentRole = "metadata"
)

// UnitStatus tracks a translation unit through the pipeline.
type UnitStatus string

const (
	// StatusUntranslated means no accepted target text exists yet.
	StatusUntranslated UnitStatus = "untranslated"
	// StatusMachineTranslated means the provider produced the target text.
	StatusMachineTranslated UnitStatus = "machine-translated"
	// StatusMemoryHit means the target text was adopted from translation memory.
	StatusMemoryHit UnitStatus = "memory-hit"
	// StatusValidated means the target text passed quality validation.
	StatusValidated UnitStatus = "validated"
	// StatusFlagged means validation failed; the unit needs re-translation.
	StatusFlagged UnitStatus = "flagged"
)

// TranslationStyle controls the tone and formality of translations.
type TranslationStyle string

const (
	// StyleFormal uses formal, professional language suitable for official documents.
	StyleFormal TranslationStyle = "formal"
	// StyleNeutral uses a neutral, professional tone suitable for general content.
	StyleNeutral TranslationStyle = "neutral"
	// StyleCasual uses casual, conversational language suitable for blogs/social media.
	StyleCasual TranslationStyle = "casual"
	// StyleMarketing uses persuasive, engaging language for promotional content.
	StyleMarketing TranslationStyle = "marketing"
	// StyleTechnical uses precise, technical language for documentation.
	StyleTechnical TranslationStyle = "technical"
)

// ContentRef identifies the logical content item a unit belongs to on the
// originating platform: an item (post) identifier plus the field within it.
type ContentRef struct {
	ItemID string // platform identifier of the content item
	Field  string // field name within the item (e.g. "title", "body")
}

// Key returns the canonical string form used for linkage and lookups.
func (r ContentRef) Key() string {
	if r.Field == "" {
		return r.ItemID
	}
	return r.ItemID + "#" + r.Field
}

// IsZero reports whether the reference is unset.
func (r ContentRef) IsZero() bool {
	return r.ItemID == "" && r.Field == ""
}

// RoleStyles maps each content role to its default translation style.
// Callers may override per run; these defaults match typical CMS content.
var RoleStyles = map[ContentRole]TranslationStyle{
	RoleTitle:     StyleMarketing,
	RoleBody:      StyleNeutral,
	RoleShortForm: StyleNeutral,
	RoleMetadata:  StyleMarketing,
}

// StyleFor returns the default translation style for a content role.
func StyleFor(role ContentRole) TranslationStyle {
	if s, ok := RoleStyles[role]; ok {
		return s
	}
	return StyleNeutral
}
