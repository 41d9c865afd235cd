// Package dispatch routes inbound interactions to command handlers.
//
// Handlers register into a (tier, command) table at startup. Resolution
// derives the acting command name and privilege tier from the interaction,
// then lookup walks tiers from the actor's tier downward and runs the
// first registered handler. An unresolvable interaction is dropped without
// a reply.
package dispatch

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jacklul/e621-telegram-bot/internal/domain"
)

// Handler processes one resolved interaction.
type Handler interface {
	Handle(ctx context.Context, req Request) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, req Request) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, req Request) error { return f(ctx, req) }

// Request is a resolved interaction handed to a handler. Args carries the
// handler-specific payload produced by routing: command arguments, an
// extracted MD5 hash, a URL for reverse search, or raw text for a random
// search.
type Request struct {
	Command     string
	Tier        domain.Tier
	Args        string
	Interaction domain.Interaction
}

var (
	siteRe = regexp.MustCompile(`e621\.net|e926\.net`)
	md5Re  = regexp.MustCompile(`[a-f0-9]{32}`)
	// hostPathRe is the cheap pre-check of the URL recognizer: a dot
	// followed eventually by a slash.
	hostPathRe = regexp.MustCompile(`^.*\..*./`)
	spaceRe    = regexp.MustCompile(`\s`)
)

// Dispatcher owns the handler table and the routing heuristics.
type Dispatcher struct {
	handlers    map[domain.Tier]map[string]Handler
	botID       int64
	adminID     int64
	botUsername string
	log         zerolog.Logger
}

// New builds an empty Dispatcher. adminID may be 0 when no bot admin is
// configured; no user then resolves to the admin tier.
func New(botID, adminID int64, botUsername string, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: map[domain.Tier]map[string]Handler{
			domain.TierUser:   {},
			domain.TierAdmin:  {},
			domain.TierSystem: {},
		},
		botID:       botID,
		adminID:     adminID,
		botUsername: strings.TrimPrefix(botUsername, "@"),
		log:         log,
	}
}

// Register installs a handler for (tier, command). Later registrations for
// the same pair replace earlier ones.
func (d *Dispatcher) Register(tier domain.Tier, command string, h Handler) {
	d.handlers[tier][strings.ToLower(command)] = h
}

// Dispatch resolves and runs one interaction. A dropped interaction and a
// resolved command with no registered handler both return nil.
func (d *Dispatcher) Dispatch(ctx context.Context, in domain.Interaction) error {
	req, ok := d.resolve(in)
	if !ok {
		return nil
	}

	h := d.lookup(req.Tier, req.Command)
	if h == nil {
		d.log.Debug().Str("command", req.Command).Stringer("tier", req.Tier).Msg("no handler registered")
		return nil
	}

	d.log.Info().
		Str("command", req.Command).
		Stringer("tier", req.Tier).
		Int64("chat_id", in.ChatID()).
		Int64("user_id", in.UserID()).
		Msg("dispatching")
	return h.Handle(ctx, req)
}

// lookup walks tiers from the actor's tier down to user and returns the
// first registered handler, so a system event can be served by a plain
// user handler but never the reverse.
func (d *Dispatcher) lookup(tier domain.Tier, command string) Handler {
	for t := tier; t >= domain.TierUser; t-- {
		if h, ok := d.handlers[t][command]; ok {
			return h
		}
	}
	return nil
}

func (d *Dispatcher) tierFor(userID int64) domain.Tier {
	if d.adminID != 0 && userID == d.adminID {
		return domain.TierAdmin
	}
	return domain.TierUser
}

func (d *Dispatcher) resolve(in domain.Interaction) (Request, bool) {
	switch {
	case in.Inline != nil:
		return Request{Command: domain.CmdInlineQuery, Tier: domain.TierSystem, Interaction: in}, true
	case in.Callback != nil:
		return d.resolveCallback(in), true
	case in.Message != nil:
		return d.resolveMessage(in)
	default:
		return Request{}, false
	}
}

// resolveCallback redispatches an "Another" button press as a fresh random
// search: the button's callback data is the tag query and the message it
// sits under always starts with "Post". Anything else is an unknown
// button, handled by the callbackquery handler with an alert.
func (d *Dispatcher) resolveCallback(in domain.Interaction) Request {
	cb := in.Callback
	if cb.Data != "" && cb.Message != nil && strings.Contains(cb.Message.Text, "Post") {
		return Request{Command: domain.CmdRandom, Tier: domain.TierSystem, Args: cb.Data, Interaction: in}
	}
	return Request{Command: domain.CmdCallbackQuery, Tier: domain.TierSystem, Interaction: in}
}

func (d *Dispatcher) resolveMessage(in domain.Interaction) (Request, bool) {
	msg := in.Message

	// Synthetic events: the bot landing in a new group introduces itself.
	if msg.GroupChatCreated {
		return Request{Command: domain.CmdHelp, Tier: domain.TierSystem, Interaction: in}, true
	}
	for _, id := range msg.NewChatMemberIDs {
		if id == d.botID {
			return Request{Command: domain.CmdHelp, Tier: domain.TierSystem, Interaction: in}, true
		}
	}

	if msg.Command != "" {
		return Request{
			Command:     strings.ToLower(msg.Command),
			Tier:        d.tierFor(msg.UserID),
			Args:        msg.CommandArgs,
			Interaction: in,
		}, true
	}

	return d.resolveGeneric(in)
}

// resolveGeneric applies the plain-message heuristics: site URLs become
// MD5 lookups, other URLs and bare images become reverse searches, and
// leftover text becomes a random search. Group messages are only
// considered when they mention the bot or reply to another message.
func (d *Dispatcher) resolveGeneric(in domain.Interaction) (Request, bool) {
	msg := in.Message
	tier := d.tierFor(msg.UserID)

	mention := "@" + d.botUsername
	mentioned := strings.Contains(msg.Text, d.botUsername) || strings.Contains(msg.Caption, d.botUsername)
	if !mentioned && msg.ReplyTo == nil && !msg.IsPrivate() {
		return Request{}, false
	}

	// A reply routes on the quoted message, so replying to an image with a
	// mention reverse-searches that image.
	target := msg
	if msg.ReplyTo != nil {
		target = msg.ReplyTo
	}
	text := strings.TrimSpace(strings.ReplaceAll(target.Text, mention, ""))

	if IsURL(text) {
		if siteRe.MatchString(text) {
			// Args may be empty when the URL carries no hash; the handler
			// answers nothing in that case, same as an unknown file name.
			return Request{Command: domain.CmdMD5, Tier: tier, Args: md5Re.FindString(text), Interaction: rewrap(in, target)}, true
		}
		return Request{Command: domain.CmdReverse, Tier: tier, Args: text, Interaction: rewrap(in, target)}, true
	}

	if (target.PhotoFileID != "" || target.Document != nil) && !postCaptionRe.MatchString(strings.TrimSpace(target.Caption)) {
		return Request{Command: domain.CmdReverse, Tier: tier, Interaction: rewrap(in, target)}, true
	}

	if !IsURL(target.Caption) {
		return Request{Command: domain.CmdRandom, Tier: tier, Args: text, Interaction: in}, true
	}

	return Request{}, false
}

var postCaptionRe = regexp.MustCompile(`e621\.net.*/(show|posts)/(\d+)`)

// rewrap swaps the interaction's message for the routing target while the
// original message keeps supplying the reply destination via its chat.
func rewrap(in domain.Interaction, target *domain.Message) domain.Interaction {
	if in.Message == target {
		return in
	}
	t := *target
	t.ChatID = in.Message.ChatID
	t.ChatType = in.Message.ChatType
	t.MessageID = in.Message.MessageID
	return domain.Interaction{Message: &t}
}

// IsURL is the minimal URL recognizer used by routing: no whitespace, a
// dotted host followed by a slash-delimited path, scheme optional.
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || spaceRe.MatchString(s) || !hostPathRe.MatchString(s) {
		return false
	}

	if u, err := url.Parse(s); err == nil && u.Scheme == "" {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Host != "" && u.Path != ""
}
