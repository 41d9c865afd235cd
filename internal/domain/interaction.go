// Package domain defines the core types shared across the bot: inbound
// interactions, privilege tiers, per-chat settings, e621 posts, and the
// normalized search result taxonomy. The types here are transport-agnostic;
// the telegram package converts provider payloads into them.
package domain

// Tier is the privilege level used to select which command implementation
// answers a given command name. Higher tiers may fall back to lower ones,
// never the other way around.
type Tier int

const (
	// TierUser is the default tier for ordinary messages.
	TierUser Tier = iota
	// TierAdmin applies when the sender matches the configured bot admin id.
	TierAdmin
	// TierSystem applies to synthetic events: chat creation, the bot being
	// added to a group, callback and inline queries.
	TierSystem
)

// String returns the lowercase tier name.
func (t Tier) String() string {
	switch t {
	case TierSystem:
		return "system"
	case TierAdmin:
		return "admin"
	default:
		return "user"
	}
}

// Synthetic command names produced by routing when no explicit command is
// present in the interaction.
const (
	CmdRandom        = "random"
	CmdHelp          = "help"
	CmdStart         = "start"
	CmdSettings      = "settings"
	CmdMD5           = "md5"
	CmdReverse       = "reverse"
	CmdCallbackQuery = "callbackquery"
	CmdInlineQuery   = "inlinequery"
)

// ChatType values as delivered by the provider.
const (
	ChatPrivate    = "private"
	ChatGroup      = "group"
	ChatSupergroup = "supergroup"
)

// Document is a file attachment on a message.
type Document struct {
	FileID   string
	MimeType string
	FileSize int64
}

// Message is one inbound text/photo/document message.
type Message struct {
	MessageID int
	ChatID    int64
	ChatType  string
	UserID    int64

	Text    string
	Caption string

	// Command and CommandArgs are populated when Text starts with a
	// /command entity; Command is lowercase without the leading slash.
	Command     string
	CommandArgs string

	// PhotoFileID is the file id of the largest photo size, if any.
	PhotoFileID string
	Document    *Document

	// ReplyTo is the quoted message when this message is a reply.
	ReplyTo *Message

	// Synthetic event markers.
	GroupChatCreated bool
	NewChatMemberIDs []int64
}

// IsPrivate reports whether the message originates from a private chat.
func (m *Message) IsPrivate() bool { return m.ChatType == ChatPrivate }

// IsGroup reports whether the message originates from a group or supergroup.
func (m *Message) IsGroup() bool {
	return m.ChatType == ChatGroup || m.ChatType == ChatSupergroup
}

// CallbackQuery is a button press on an inline keyboard.
type CallbackQuery struct {
	ID      string
	UserID  int64
	Data    string
	Message *Message
}

// InlineQuery is an inline search request typed after the bot username.
type InlineQuery struct {
	ID     string
	UserID int64
	Query  string
	Offset string
}

// Interaction is one inbound event from the messaging transport. Exactly one
// of the three fields is non-nil. Interactions are constructed once per
// update, read-only, and discarded after handling.
type Interaction struct {
	Message  *Message
	Callback *CallbackQuery
	Inline   *InlineQuery
}

// ChatID returns the originating chat identifier, or 0 when the interaction
// carries none (inline queries, callbacks on inaccessible messages).
func (in *Interaction) ChatID() int64 {
	switch {
	case in.Message != nil:
		return in.Message.ChatID
	case in.Callback != nil && in.Callback.Message != nil:
		return in.Callback.Message.ChatID
	default:
		return 0
	}
}

// UserID returns the originating user identifier, or 0 when unknown.
func (in *Interaction) UserID() int64 {
	switch {
	case in.Message != nil:
		return in.Message.UserID
	case in.Callback != nil:
		return in.Callback.UserID
	case in.Inline != nil:
		return in.Inline.UserID
	default:
		return 0
	}
}
