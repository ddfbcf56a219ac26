package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ninjahub/ninjahub-core/internal/domain"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

const postColumns = `id, author_id, title, content, excerpt, status, name, parent_id, type,
	thumbnail_id, created_at, modified_at`

// Insert writes the post row, its meta and its term associations in one
// transaction.
func (r *PostRepository) Insert(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	var saved *domain.Post
	err := withTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO posts (author_id, title, content, excerpt, status, name, parent_id, type, thumbnail_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING `+postColumns,
			p.AuthorID, p.Title, p.Content, p.Excerpt, p.Status, p.Name, p.ParentID, p.Type, p.ThumbnailID,
		)
		var err error
		if saved, err = scanPost(row); err != nil {
			return err
		}
		return r.writeRelations(ctx, tx, saved, p)
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *PostRepository) Update(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	var saved *domain.Post
	err := withTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE posts
			SET    author_id = $2, title = $3, content = $4, excerpt = $5, status = $6,
			       name = $7, parent_id = $8, thumbnail_id = $9, modified_at = NOW()
			WHERE  id = $1
			RETURNING `+postColumns,
			p.ID, p.AuthorID, p.Title, p.Content, p.Excerpt, p.Status, p.Name, p.ParentID, p.ThumbnailID,
		)
		var err error
		if saved, err = scanPost(row); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM term_relationships WHERE post_id = $1`, p.ID); err != nil {
			return fmt.Errorf("clear terms: %w", err)
		}
		return r.writeRelations(ctx, tx, saved, p)
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *PostRepository) writeRelations(ctx context.Context, tx pgx.Tx, saved, src *domain.Post) error {
	values := src.Meta.Values()
	for k, v := range values {
		_, err := tx.Exec(ctx, `
			INSERT INTO post_meta (post_id, meta_key, meta_value) VALUES ($1, $2, $3)
			ON CONFLICT (post_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value`,
			saved.ID, k, v)
		if err != nil {
			return fmt.Errorf("write post meta %s: %w", k, err)
		}
	}
	saved.Meta = domain.SchemaFor(saved.Type).New()
	saved.Meta.Load(values)

	for _, termID := range src.TermIDs() {
		_, err := tx.Exec(ctx,
			`INSERT INTO term_relationships (post_id, term_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			saved.ID, termID)
		if err != nil {
			return fmt.Errorf("write term %d: %w", termID, err)
		}
	}
	saved.Taxonomy = src.Taxonomy
	return nil
}

// Delete removes the post when force is set, otherwise moves it to trash.
func (r *PostRepository) Delete(ctx context.Context, id int64, force bool) error {
	query := `UPDATE posts SET status = 'trash', modified_at = NOW() WHERE id = $1`
	if force {
		query = `DELETE FROM posts WHERE id = $1`
	}
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	p, err := scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, []*domain.Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByIDs returns the posts found among ids, newest first.
func (r *PostRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Post, error) {
	return r.collect(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ANY($1) ORDER BY id DESC`, ids)
}

var orderColumns = map[string]string{
	"":         "id",
	"ID":       "id",
	"id":       "id",
	"date":     "created_at",
	"modified": "modified_at",
	"title":    "title",
}

func buildWhere(q domain.PostQuery) (string, []any) {
	var args []any
	var where []string
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if q.Type != "" {
		add("type = $%d", q.Type)
	}
	if q.Status != "" {
		add("status = $%d", q.Status)
	}
	if q.Author > 0 {
		add("author_id = $%d", q.Author)
	}
	if len(q.NotIn) > 0 {
		add("NOT (id = ANY($%d))", q.NotIn)
	}
	if len(where) == 0 {
		return "TRUE", args
	}
	return strings.Join(where, " AND "), args
}

func (r *PostRepository) List(ctx context.Context, q domain.PostQuery) ([]*domain.Post, error) {
	where, args := buildWhere(q)

	col, ok := orderColumns[q.OrderBy]
	if !ok {
		col = "id"
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM posts WHERE %s ORDER BY %s %s, id %s`, postColumns, where, col, dir, dir)
	if q.Limit > 0 {
		args = append(args, q.Limit, q.Offset())
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}
	return r.collect(ctx, query, args...)
}

func (r *PostRepository) Count(ctx context.Context, q domain.PostQuery) (int, error) {
	where, args := buildWhere(q)
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// Terms lists every term of taxonomy by name.
func (r *PostRepository) Terms(ctx context.Context, taxonomy string) ([]domain.Term, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, taxonomy, slug, name FROM terms WHERE taxonomy = $1 ORDER BY name`, taxonomy)
	if err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	terms, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Term])
	if err != nil {
		return nil, fmt.Errorf("scan terms: %w", err)
	}
	return terms, nil
}

// EnsureTerm returns the term with taxonomy and slug, creating it if needed.
func (r *PostRepository) EnsureTerm(ctx context.Context, taxonomy, slug, name string) (domain.Term, error) {
	t := domain.Term{Taxonomy: taxonomy, Slug: slug}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO terms (taxonomy, slug, name) VALUES ($1, $2, $3)
		ON CONFLICT (taxonomy, slug) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name`, taxonomy, slug, name).Scan(&t.ID, &t.Name)
	if err != nil {
		return domain.Term{}, fmt.Errorf("ensure term: %w", err)
	}
	return t, nil
}

func (r *PostRepository) collect(ctx context.Context, query string, args ...any) ([]*domain.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	rows.Close()

	if err := r.hydrate(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// hydrate loads meta and taxonomy for posts in two queries.
func (r *PostRepository) hydrate(ctx context.Context, posts []*domain.Post) error {
	if len(posts) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Post, len(posts))
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT post_id, meta_key, meta_value FROM post_meta WHERE post_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("load post meta: %w", err)
	}
	stored := make(map[int64]map[string]string)
	for rows.Next() {
		var id int64
		var k, v string
		if err := rows.Scan(&id, &k, &v); err != nil {
			rows.Close()
			return fmt.Errorf("scan post meta: %w", err)
		}
		if stored[id] == nil {
			stored[id] = make(map[string]string)
		}
		stored[id][k] = v
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate post meta: %w", err)
	}
	for id, m := range stored {
		byID[id].Meta.Load(m)
	}

	rows, err = r.pool.Query(ctx, `
		SELECT tr.post_id, t.id, t.taxonomy, t.slug, t.name
		FROM   term_relationships tr
		JOIN   terms t ON t.id = tr.term_id
		WHERE  tr.post_id = ANY($1)
		ORDER  BY t.name`, ids)
	if err != nil {
		return fmt.Errorf("load post terms: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var t domain.Term
		if err := rows.Scan(&id, &t.ID, &t.Taxonomy, &t.Slug, &t.Name); err != nil {
			return fmt.Errorf("scan post term: %w", err)
		}
		p := byID[id]
		p.Taxonomy[t.Taxonomy] = append(p.Taxonomy[t.Taxonomy], t)
	}
	return rows.Err()
}

func scanPost(row rowScanner) (*domain.Post, error) {
	var p domain.Post
	err := row.Scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Content, &p.Excerpt, &p.Status, &p.Name, &p.ParentID, &p.Type,
		&p.ThumbnailID, &p.CreatedAt, &p.ModifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	p.Meta = domain.SchemaFor(p.Type).New()
	p.Taxonomy = map[string][]domain.Term{}
	return &p, nil
}
