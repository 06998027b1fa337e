// Package service derives normalized message facts from inbound messages.
package service

import (
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf16"

	"github.com/PuerkitoBio/purell"
	"github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
	"github.com/rivo/uniseg"
	"github.com/samber/lo"
)

var (
	// bareURLPattern is intentionally permissive; candidates that do not parse
	// into a host are dropped during normalization.
	bareURLPattern = regexp.MustCompile(`(?i)(?:https?://|www\.)[^\s<>"']+`)

	mentionPattern = regexp.MustCompile(`(?:^|[^\w])@[A-Za-z][A-Za-z0-9_]{3,31}`)
	hashtagPattern = regexp.MustCompile(`(?:^|\s)#[\p{L}\p{N}_]+`)

	trailingPunct = ".,;:!?)]}>'\""

	normalizeFlags = purell.FlagsSafe | purell.FlagRemoveFragment
)

// Extract builds the Facts for a single message. It has no side effects.
func Extract(msg domain.Message) *domain.Facts {
	text := msg.Body()

	facts := &domain.Facts{
		MessageID: msg.ID,
		ChatID:    msg.ChatID,
		SenderID:  msg.Sender.ID,
		ThreadID:  msg.ThreadID,
		SentAt:    time.Unix(msg.Date, 0).UTC(),

		Text:      text,
		LowerText: strings.ToLower(text),
		Entities:  msg.Entities,

		HasForward:         msg.Forwarded || msg.ForwardFromChannel,
		ForwardFromChannel: msg.ForwardFromChannel,
		Media:              lo.SliceToMap(msg.Media, func(k domain.MediaKind) (domain.MediaKind, bool) { return k, true }),
		HasCaption:         msg.Caption != "",
		HasContact:         msg.HasContact,
		HasLocation:        msg.HasLocation,
		HasPoll:            msg.HasPoll,
		HasGame:            msg.HasGame,
		HasInlineKeyboard:  msg.HasInlineKeyboard,

		SenderIsBot:  msg.Sender.IsBot,
		SentViaBot:   msg.ViaBot,
		IsReply:      msg.IsReply,
		IsCrossReply: msg.IsReply && msg.ReplyToAuthorID != 0 && msg.ReplyToAuthorID != msg.Sender.ID,
		JoinLeave:    msg.JoinLeave,
	}

	facts.Links = ExtractLinks(text, msg.Entities)
	facts.Domains = lo.Uniq(lo.Map(facts.Links, func(l domain.Link, _ int) string { return l.Domain }))
	facts.HasLink = len(facts.Links) > 0

	facts.HasUsername = hasEntity(msg.Entities, domain.EntityMention) || mentionPattern.MatchString(text)
	facts.HasHashtag = hasEntity(msg.Entities, domain.EntityHashtag) || hashtagPattern.MatchString(text)
	facts.HasBotCommand = hasEntity(msg.Entities, domain.EntityBotCommand) || strings.HasPrefix(strings.TrimSpace(text), "/")

	facts.HasLatin, facts.HasPersian, facts.HasCyrillic, facts.HasHan = detectScripts(text)
	facts.HasEmoji, facts.EmojiOnly = detectEmoji(text)

	return facts
}

// ExtractLinks combines url/text_link entities with a scan of the raw text.
// Results are normalized and de-duplicated by href; malformed candidates are
// dropped.
func ExtractLinks(text string, entities []domain.Entity) []domain.Link {
	var candidates []string

	for _, e := range entities {
		switch e.Type {
		case domain.EntityTextLink:
			candidates = append(candidates, e.URL)
		case domain.EntityURL:
			candidates = append(candidates, entityText(text, e))
		}
	}
	candidates = append(candidates, bareURLPattern.FindAllString(text, -1)...)

	links := lo.FilterMap(candidates, func(raw string, _ int) (domain.Link, bool) {
		return NormalizeLink(raw)
	})
	return lo.UniqBy(links, func(l domain.Link) string { return l.Href })
}

// NormalizeLink defaults the scheme to https, parses the candidate and
// derives its domain (lower-cased host without a leading "www.").
func NormalizeLink(raw string) (domain.Link, bool) {
	raw = strings.TrimRight(strings.TrimSpace(raw), trailingPunct)
	if raw == "" {
		return domain.Link{}, false
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return domain.Link{}, false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || !strings.Contains(host, ".") || strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return domain.Link{}, false
	}

	return domain.Link{
		Href:   purell.NormalizeURL(u, normalizeFlags),
		Domain: strings.TrimPrefix(host, "www."),
	}, true
}

// entityText slices text by a UTF-16 offset/length pair
func entityText(text string, e domain.Entity) string {
	units := utf16.Encode([]rune(text))
	if e.Offset < 0 || e.Length <= 0 || e.Offset+e.Length > len(units) {
		return ""
	}
	return string(utf16.Decode(units[e.Offset : e.Offset+e.Length]))
}

func hasEntity(entities []domain.Entity, t domain.EntityType) bool {
	return lo.ContainsBy(entities, func(e domain.Entity) bool { return e.Type == t })
}

// persian covers the Arabic block and presentation forms used by Persian text
var persian = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0600, Hi: 0x06ff, Stride: 1},
		{Lo: 0xfb50, Hi: 0xfdff, Stride: 1},
		{Lo: 0xfe70, Hi: 0xfeff, Stride: 1},
	},
}

func detectScripts(text string) (latin, persianScript, cyrillic, han bool) {
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Latin, r):
			latin = true
		case unicode.Is(persian, r):
			persianScript = true
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic = true
		case unicode.Is(unicode.Han, r):
			han = true
		}
	}
	return latin, persianScript, cyrillic, han
}

// pictographic approximates Extended_Pictographic plus regional indicators
// and keycap marks, which stdlib unicode tables do not expose.
var pictographic = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00a9, Hi: 0x00a9, Stride: 1},
		{Lo: 0x00ae, Hi: 0x00ae, Stride: 1},
		{Lo: 0x203c, Hi: 0x203c, Stride: 1},
		{Lo: 0x2049, Hi: 0x2049, Stride: 1},
		{Lo: 0x20e3, Hi: 0x20e3, Stride: 1},
		{Lo: 0x2122, Hi: 0x2122, Stride: 1},
		{Lo: 0x2139, Hi: 0x2139, Stride: 1},
		{Lo: 0x2194, Hi: 0x21aa, Stride: 1},
		{Lo: 0x231a, Hi: 0x23ff, Stride: 1},
		{Lo: 0x24c2, Hi: 0x24c2, Stride: 1},
		{Lo: 0x25aa, Hi: 0x27bf, Stride: 1},
		{Lo: 0x2934, Hi: 0x2935, Stride: 1},
		{Lo: 0x2b05, Hi: 0x2b55, Stride: 1},
		{Lo: 0x3030, Hi: 0x3030, Stride: 1},
		{Lo: 0x303d, Hi: 0x303d, Stride: 1},
		{Lo: 0x3297, Hi: 0x3299, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1f000, Hi: 0x1faff, Stride: 1},
	},
}

// detectEmoji walks grapheme clusters so ZWJ sequences, skin tones and
// variation selectors count as part of one emoji.
func detectEmoji(text string) (hasEmoji, emojiOnly bool) {
	if strings.TrimSpace(text) == "" {
		return false, false
	}

	emojiOnly = true
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		if lo.ContainsBy(runes, func(r rune) bool { return unicode.Is(pictographic, r) }) {
			hasEmoji = true
			continue
		}
		if lo.EveryBy(runes, isFiller) {
			continue
		}
		emojiOnly = false
	}
	return hasEmoji, hasEmoji && emojiOnly
}

func isFiller(r rune) bool {
	return unicode.IsSpace(r) || r == 0x200d || r == 0xfe0f || unicode.Is(unicode.Mn, r)
}
