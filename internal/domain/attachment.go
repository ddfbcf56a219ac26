package domain

import "time"

type Attachment struct {
	ID        int64
	OwnerID   int64
	ObjectKey string
	FileName  string
	MimeType  string
	Size      int64
	CreatedAt time.Time
}
