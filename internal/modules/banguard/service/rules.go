package service

import (
	msgdomain "github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
	"github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
	"github.com/samber/lo"
)

// check decides one built-in rule against the facts of a message.
type check func(e *Evaluator, f *msgdomain.Facts, rules *domain.BanRules) bool

func media(kind msgdomain.MediaKind) check {
	return func(_ *Evaluator, f *msgdomain.Facts, _ *domain.BanRules) bool { return f.HasMedia(kind) }
}

func flag(get func(f *msgdomain.Facts) bool) check {
	return func(_ *Evaluator, f *msgdomain.Facts, _ *domain.BanRules) bool { return get(f) }
}

var checks = map[domain.BanRuleKey]check{
	domain.BanLinks: func(e *Evaluator, f *msgdomain.Facts, rules *domain.BanRules) bool {
		return lo.ContainsBy(f.Links, func(l msgdomain.Link) bool {
			return e.patterns.linkBlocked(l, rules.Blacklist, rules.Whitelist)
		})
	},
	domain.BanTextPattern: func(e *Evaluator, f *msgdomain.Facts, rules *domain.BanRules) bool {
		return f.Text != "" && e.patterns.matchesAny(rules.Blacklist, f.Text)
	},
	domain.BanForward:        flag(func(f *msgdomain.Facts) bool { return f.HasForward }),
	domain.BanForwardChannel: flag(func(f *msgdomain.Facts) bool { return f.ForwardFromChannel }),
	domain.BanSticker:        media(msgdomain.MediaKindSticker),
	domain.BanPhoto:          media(msgdomain.MediaKindPhoto),
	domain.BanVideo:          media(msgdomain.MediaKindVideo),
	domain.BanVideoNote:      media(msgdomain.MediaKindVideoNote),
	domain.BanVoice:          media(msgdomain.MediaKindVoice),
	domain.BanAudio:          media(msgdomain.MediaKindAudio),
	domain.BanDocument:       media(msgdomain.MediaKindDocument),
	domain.BanGif:            media(msgdomain.MediaKindAnimation),
	domain.BanCaption:        flag(func(f *msgdomain.Facts) bool { return f.HasCaption }),
	domain.BanUsername:       flag(func(f *msgdomain.Facts) bool { return f.HasUsername }),
	domain.BanHashtag:        flag(func(f *msgdomain.Facts) bool { return f.HasHashtag }),
	domain.BanBotCommand:     flag(func(f *msgdomain.Facts) bool { return f.HasBotCommand }),
	domain.BanEmoji:          flag(func(f *msgdomain.Facts) bool { return f.HasEmoji }),
	domain.BanEmojiOnly:      flag(func(f *msgdomain.Facts) bool { return f.EmojiOnly }),
	domain.BanContact:        flag(func(f *msgdomain.Facts) bool { return f.HasContact }),
	domain.BanLocation:       flag(func(f *msgdomain.Facts) bool { return f.HasLocation }),
	domain.BanPoll:           flag(func(f *msgdomain.Facts) bool { return f.HasPoll }),
	domain.BanGame:           flag(func(f *msgdomain.Facts) bool { return f.HasGame }),
	domain.BanInlineKeyboard: flag(func(f *msgdomain.Facts) bool { return f.HasInlineKeyboard }),
	domain.BanLatin:          flag(func(f *msgdomain.Facts) bool { return f.HasLatin }),
	domain.BanPersian:        flag(func(f *msgdomain.Facts) bool { return f.HasPersian }),
	domain.BanCyrillic:       flag(func(f *msgdomain.Facts) bool { return f.HasCyrillic }),
	domain.BanChinese:        flag(func(f *msgdomain.Facts) bool { return f.HasHan }),
	domain.BanBots:           flag(func(f *msgdomain.Facts) bool { return f.SenderIsBot }),
	domain.BanViaBot:         flag(func(f *msgdomain.Facts) bool { return f.SentViaBot }),
	domain.BanReply:          flag(func(f *msgdomain.Facts) bool { return f.IsReply }),
	domain.BanCrossReply:     flag(func(f *msgdomain.Facts) bool { return f.IsCrossReply }),
}
