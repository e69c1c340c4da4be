package model

// Chat is a conversation between a set of members.
//
// IDs are small non-negative integers allocated first-fit: when a chat is
// deleted its ID becomes free again and the next creation reuses it. Callers
// therefore must not assume IDs grow monotonically.
//
// Members is a set (no duplicates), serialized as a sorted list for stable
// JSON output. The creator is the sole initial member; everyone else joins
// by redeeming an invite.
type Chat struct {
	ID      int      `json:"id"`
	Members []string `json:"members"`
}

// Message is a single message inside a chat.
//
// The ID is POSITIONAL: it equals the message's index in the chat's sequence
// at the time of the call. Deleting a message shifts every later message
// down by one, so stale IDs resolve to the successor message. Do not cache
// message IDs across mutations to the same chat.
//
// Timestamp is wall-clock nanoseconds captured at append time. Ordering is
// best-effort chronological; nothing guarantees monotonicity across chats.
type Message struct {
	ID        int    `json:"id"`
	ChatID    int    `json:"chat_id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	Edited    bool   `json:"edited"`
}

// Invite maps a redeemable code to a chat. Codes are 10-character
// alphanumeric strings, unique across ALL chats, and multi-use: redeeming
// one does not consume it. An invite lives until a chat member deletes it or
// its chat is deleted.
type Invite struct {
	Code   string `json:"invite"`
	ChatID int    `json:"chat_id"`
}
