package moderation

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ConfirmCallback completes a punishment. The message is the confirmation
// message that was reacted to, or nil when confirmation was skipped.
type ConfirmCallback func(message *discordgo.Message, silent bool)

type pendingConfirmation struct {
	guildID   string
	channelID string
	issuerID  string
	callback  ConfirmCallback
}

// Confirmations tracks punishments awaiting explicit confirmation, keyed by
// the confirmation message's ID. Each entry moves through exactly two states:
// awaiting, then completed (or cancelled); the callback fires at most once.
type Confirmations struct {
	mu           sync.Mutex
	pending      map[string]*pendingConfirmation
	confirmEmoji string
	silentEmoji  string
}

func NewConfirmations(confirmEmoji, silentEmoji string) *Confirmations {
	return &Confirmations{
		pending:      make(map[string]*pendingConfirmation),
		confirmEmoji: confirmEmoji,
		silentEmoji:  silentEmoji,
	}
}

// Await registers a continuation for the confirmation message.
func (c *Confirmations) Await(messageID, guildID, channelID, issuerID string, callback ConfirmCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[messageID] = &pendingConfirmation{
		guildID:   guildID,
		channelID: channelID,
		issuerID:  issuerID,
		callback:  callback,
	}
}

// Resolve fires the continuation for messageID if userID is the issuer and
// emoji is one of the confirmation reactions. The entry is removed before the
// callback runs, so a racing second reaction cannot fire it twice.
func (c *Confirmations) Resolve(messageID, userID, emoji string, message *discordgo.Message) bool {
	if emoji != c.confirmEmoji && emoji != c.silentEmoji {
		return false
	}

	c.mu.Lock()
	entry := c.pending[messageID]
	if entry == nil || entry.issuerID != userID {
		c.mu.Unlock()
		return false
	}
	delete(c.pending, messageID)
	c.mu.Unlock()

	entry.callback(message, emoji == c.silentEmoji)
	return true
}

// Cancel drops a pending confirmation without firing it. Used by external
// collaborators that expire confirmation messages; absent IDs are a no-op.
func (c *Confirmations) Cancel(messageID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[messageID]; !ok {
		return false
	}
	delete(c.pending, messageID)
	return true
}

// Pending reports whether messageID still awaits confirmation.
func (c *Confirmations) Pending(messageID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[messageID] != nil
}
