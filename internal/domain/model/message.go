package model

import "time"

type AttachmentKind string

const (
	AttachmentNone     AttachmentKind = ""
	AttachmentPhoto    AttachmentKind = "photo"
	AttachmentVideo    AttachmentKind = "video"
	AttachmentDocument AttachmentKind = "document"
	AttachmentAudio    AttachmentKind = "audio"
)

// Attachment is decided once at ingestion in the Telegram adapter; the rest
// of the system never re-inspects the raw update.
type Attachment struct {
	Kind     AttachmentKind
	FileID   string
	FileName string // set for documents only
}

func (a Attachment) IsZero() bool { return a.Kind == AttachmentNone }

// Message is one entry of the append-only relay transcript. Messages are
// immutable and never deleted; the log records "attempted", not "delivered".
type Message struct {
	ID         string // ULID, sortable by creation time
	Content    string // text or caption
	Attachment Attachment
	FromAdmin  bool
	UserID     string // owning customer, external chat-platform id
	BudgetID   string
	CreatedAt  time.Time
}
