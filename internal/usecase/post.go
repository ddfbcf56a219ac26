package usecase

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/ninjahub/ninjahub-core/internal/domain"
	"github.com/ninjahub/ninjahub-core/internal/repository"
)

// DefaultLimit is the page size of module listings.
const DefaultLimit = 10

// PostService writes posts of any type and fires the per-type hooks once the
// write has committed.
type PostService struct {
	posts  repository.PostRepository
	events Events
}

func NewPostService(posts repository.PostRepository, events Events) *PostService {
	return &PostService{posts: posts, events: events}
}

func (s *PostService) Insert(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, domain.ErrEmptyTitle
	}
	saved, err := s.posts.Insert(ctx, p)
	if err != nil {
		return nil, err
	}
	s.events.DoAction(ctx, AfterInsert(saved.Type), saved)
	return saved, nil
}

func (s *PostService) Update(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	if p.ID <= 0 {
		return nil, domain.ErrInvalidPostID
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, domain.ErrEmptyTitle
	}
	saved, err := s.posts.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	s.events.DoAction(ctx, AfterUpdate(saved.Type), saved)
	return saved, nil
}

// Delete trashes p, or removes it when force is set.
func (s *PostService) Delete(ctx context.Context, p *domain.Post, force bool) error {
	if err := s.posts.Delete(ctx, p.ID, force); err != nil {
		return err
	}
	s.events.DoAction(ctx, AfterDelete(p.Type), p.ID, force)
	return nil
}

func (s *PostService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// ModuleService answers the read side of one post type.
type ModuleService struct {
	postType   string
	posts      repository.PostRepository
	render     *template.Template
	shortcodes func(content string) template.HTML
}

// NewModuleService renders LoadMore pages with card, which is executed
// once per post. A nil card renders the post title as a list item.
func NewModuleService(postType string, posts repository.PostRepository, card *template.Template) *ModuleService {
	if card == nil {
		card = defaultCard
	}
	return &ModuleService{postType: postType, posts: posts, render: card}
}

// WithShortcodes renders post content into each card's Body through
// expand. Without it cards have no body.
func (m *ModuleService) WithShortcodes(expand func(content string) template.HTML) *ModuleService {
	m.shortcodes = expand
	return m
}

// cardData is what the card template executes against.
type cardData struct {
	*domain.Post
	Body template.HTML
}

var defaultCard = template.Must(template.New("card").Parse(
	`<div class="ninja-card" data-id="{{.ID}}"><h3>{{.Title}}</h3>{{with .Excerpt}}<p>{{.}}</p>{{end}}` +
		`{{with .Body}}<div class="ninja-card-body">{{.}}</div>{{end}}</div>`,
))

type ListInput struct {
	Status domain.PostStatus
	Limit  int
	Page   int
	NotIn  []int64
}

func (m *ModuleService) query(in ListInput) domain.PostQuery {
	if in.Status == "" {
		in.Status = domain.StatusPublish
	}
	if in.Limit <= 0 {
		in.Limit = DefaultLimit
	}
	if in.Page <= 0 {
		in.Page = 1
	}
	return domain.PostQuery{
		Type:    m.postType,
		Status:  in.Status,
		Limit:   in.Limit,
		Page:    in.Page,
		NotIn:   in.NotIn,
		OrderBy: "ID",
		Desc:    true,
	}
}

// GetAll lists posts newest first.
func (m *ModuleService) GetAll(ctx context.Context, in ListInput) ([]*domain.Post, error) {
	return m.posts.List(ctx, m.query(in))
}

// Count counts the posts GetAll pages through.
func (m *ModuleService) Count(ctx context.Context, in ListInput) (int, error) {
	q := m.query(in)
	q.Limit, q.Page = 0, 0
	return m.posts.Count(ctx, q)
}

func (m *ModuleService) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidPostID
	}
	p, err := m.posts.GetByID(ctx, id)
	if errors.Is(err, domain.ErrPostNotFound) {
		return nil, domain.ErrNoPosts
	}
	if err != nil {
		return nil, err
	}
	if p.Type != m.postType {
		return nil, domain.ErrNoPosts
	}
	return p, nil
}

func (m *ModuleService) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return m.posts.GetByIDs(ctx, ids)
}

func (m *ModuleService) GetTaxonomyTerms(ctx context.Context, taxonomy string) ([]domain.Term, error) {
	return m.posts.Terms(ctx, taxonomy)
}

type LoadMoreResult struct {
	HTML string `json:"html"`
	Last bool   `json:"last"`
}

// LoadMore renders one page of posts. Last is set once page*limit reaches
// count.
func (m *ModuleService) LoadMore(ctx context.Context, page, limit, count int) (LoadMoreResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if page <= 0 {
		page = 1
	}
	posts, err := m.GetAll(ctx, ListInput{Limit: limit, Page: page})
	if err != nil {
		return LoadMoreResult{}, err
	}

	var b strings.Builder
	for _, p := range posts {
		c := cardData{Post: p}
		if m.shortcodes != nil && p.Content != "" {
			c.Body = m.shortcodes(p.Content)
		}
		if err := m.render.Execute(&b, c); err != nil {
			return LoadMoreResult{}, fmt.Errorf("render post %d: %w", p.ID, err)
		}
	}
	return LoadMoreResult{HTML: b.String(), Last: page*limit >= count}, nil
}
