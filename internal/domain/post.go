package domain

import (
	"slices"
	"time"
)

type PostStatus string

const (
	StatusPublish PostStatus = "publish"
	StatusDraft   PostStatus = "draft"
	StatusPending PostStatus = "pending"
	StatusPrivate PostStatus = "private"
	StatusTrash   PostStatus = "trash"
)

// Built-in post types.
const (
	TypePost         = "post"
	TypeProfile      = "profile"
	TypeNotification = "notification"
	TypeAttachment   = "attachment"
)

// PostTypes maps a post type to the meta keys it declares. Types missing
// from the map accept no metadata.
var PostTypes = map[string]*MetaSchema{
	TypePost:         NewMetaSchema(),
	TypeProfile:      NewMetaSchema("user_id", "bio", "cover_id"),
	TypeNotification: NewMetaSchema("notification_type", "object_id", "seen").WithDefault("seen", "0"),
}

// SchemaFor returns the meta schema of postType, or an empty schema.
func SchemaFor(postType string) *MetaSchema {
	if s, ok := PostTypes[postType]; ok {
		return s
	}
	return NewMetaSchema()
}

type Term struct {
	ID       int64
	Taxonomy string
	Slug     string
	Name     string
}

type Post struct {
	ID          int64
	AuthorID    int64
	Title       string
	Content     string
	Excerpt     string
	Status      PostStatus
	Name        string
	ParentID    int64
	Type        string
	ThumbnailID int64
	Link        string
	Taxonomy    map[string][]Term
	Meta        Meta
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

// NewPost returns a published post of postType with that type's meta schema.
func NewPost(postType string) *Post {
	if postType == "" {
		postType = TypePost
	}
	return &Post{
		Status:   StatusPublish,
		Type:     postType,
		Taxonomy: map[string][]Term{},
		Meta:     SchemaFor(postType).New(),
	}
}

// SetMetaData stores a declared meta value.
func (p *Post) SetMetaData(key, value string) error {
	return p.Meta.Set(key, value)
}

func (p *Post) GetMetaData(key string) string {
	return p.Meta.Get(key)
}

// TermIDs returns every associated term ID, sorted.
func (p *Post) TermIDs() []int64 {
	var ids []int64
	for _, terms := range p.Taxonomy {
		for _, t := range terms {
			ids = append(ids, t.ID)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// PostQuery filters post listings.
type PostQuery struct {
	Type    string
	Status  PostStatus
	Author  int64
	Limit   int
	Page    int
	NotIn   []int64
	OrderBy string
	Desc    bool
}

func (q PostQuery) Offset() int {
	if q.Page <= 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}
