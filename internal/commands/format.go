package commands

import (
	"fmt"

	"github.com/likeforge/likebot/internal/likeapi"
)

// User-visible reply texts. Telegram Markdown.
const (
	MsgQuotaExceeded = "🚫 Daily request limit reached."
	MsgLikeUsage     = "❌ Format: /like <region> <uid>"
	MsgAddVIPUsage   = "❌ Format: /addvip <user_id> <days>"
	MsgNotAuthorized = "🚫 Not authorized."
	MsgInternalError = "❌ An error occurred while processing your request."
	MsgAlreadyMaxed  = "❌ Max likes for UID."
	MsgAPIError      = "❌ API Error."
	MsgUpstreamError = "❌ Like service is unreachable. Try again later."
)

// FormatOutcome renders a like API outcome into the reply sent to the user.
// Shared between the inline privileged path and the fulfillment loop so both
// produce identical messages.
func FormatOutcome(out likeapi.Outcome, uid string) string {
	switch o := out.(type) {
	case likeapi.Success:
		return fmt.Sprintf("✅ *Like Processed*\n👤 %s\n🆔 %s\n👍 %d->%d (+%d)",
			o.Nickname, uid, o.LikesBefore, o.LikesAfter, o.LikesAdded)
	case likeapi.AlreadyMaxed:
		return MsgAlreadyMaxed
	case likeapi.APIError:
		return MsgAPIError
	default:
		return MsgUpstreamError
	}
}
