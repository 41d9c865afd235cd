package domain

// GroupSettings holds the effective per-chat configuration parsed from the
// settings fragment embedded in the chat description. The zero value is the
// hardcoded default: no tags, nothing forced, antispam and SFW mode off.
//
// The fragment itself uses 0/1 integers for the boolean switches; the
// groupcfg package owns that wire shape and maps it onto this type.
type GroupSettings struct {
	// DefaultTags are substituted when a search carries no tags, and always
	// when ForceTags is set.
	DefaultTags string `json:"default_tags"`
	// ForceTags makes DefaultTags override user-supplied tags entirely.
	ForceTags bool `json:"force_tags"`
	// AntispamSeconds is the fixed rate-limit window for chat-scoped
	// searches; zero disables limiting.
	AntispamSeconds int `json:"antispam_seconds"`
	// SFWOnly forces rating:safe onto every search from this chat.
	SFWOnly bool `json:"sfw_only"`
}
