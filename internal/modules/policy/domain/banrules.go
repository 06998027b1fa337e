package domain

// BanRuleKey names one built-in ban guard rule
type BanRuleKey string

const (
	BanLinks          BanRuleKey = "banLinks"
	BanTextPattern    BanRuleKey = "banTextPattern"
	BanForward        BanRuleKey = "banForward"
	BanForwardChannel BanRuleKey = "banForwardChannel"
	BanSticker        BanRuleKey = "banSticker"
	BanPhoto          BanRuleKey = "banPhoto"
	BanVideo          BanRuleKey = "banVideo"
	BanVideoNote      BanRuleKey = "banVideoNote"
	BanVoice          BanRuleKey = "banVoice"
	BanAudio          BanRuleKey = "banAudio"
	BanDocument       BanRuleKey = "banDocument"
	BanGif            BanRuleKey = "banGif"
	BanCaption        BanRuleKey = "banCaption"
	BanUsername       BanRuleKey = "banUsername"
	BanHashtag        BanRuleKey = "banHashtag"
	BanBotCommand     BanRuleKey = "banBotCommand"
	BanEmoji          BanRuleKey = "banEmoji"
	BanEmojiOnly      BanRuleKey = "banEmojiOnly"
	BanContact        BanRuleKey = "banContact"
	BanLocation       BanRuleKey = "banLocation"
	BanPoll           BanRuleKey = "banPoll"
	BanGame           BanRuleKey = "banGame"
	BanInlineKeyboard BanRuleKey = "banInlineKeyboard"
	BanLatin          BanRuleKey = "banLatin"
	BanPersian        BanRuleKey = "banPersian"
	BanCyrillic       BanRuleKey = "banCyrillic"
	BanChinese        BanRuleKey = "banChinese"
	BanBots           BanRuleKey = "banBots"
	BanViaBot         BanRuleKey = "banViaBot"
	BanReply          BanRuleKey = "banReply"
	BanCrossReply     BanRuleKey = "banCrossReply"
)

// Catalog lists every built-in rule in evaluation order.
var Catalog = []BanRuleKey{
	BanLinks, BanTextPattern, BanForward, BanForwardChannel,
	BanSticker, BanPhoto, BanVideo, BanVideoNote, BanVoice, BanAudio, BanDocument, BanGif, BanCaption,
	BanUsername, BanHashtag, BanBotCommand, BanEmoji, BanEmojiOnly,
	BanContact, BanLocation, BanPoll, BanGame, BanInlineKeyboard,
	BanLatin, BanPersian, BanCyrillic, BanChinese,
	BanBots, BanViaBot, BanReply, BanCrossReply,
}

// BanRuleSetting toggles one built-in rule
type BanRuleSetting struct {
	Enabled  bool     `json:"enabled"`
	Schedule Schedule `json:"schedule"`
}

// BanRules is the ban rule settings group of a chat
type BanRules struct {
	Rules     map[BanRuleKey]BanRuleSetting `json:"rules"`
	Blacklist []string                      `json:"blacklist"`
	Whitelist []string                      `json:"whitelist"`
}

// Setting returns the setting for key; unknown keys are disabled.
func (b *BanRules) Setting(key BanRuleKey) BanRuleSetting {
	if b == nil || b.Rules == nil {
		return BanRuleSetting{}
	}
	return b.Rules[key]
}
