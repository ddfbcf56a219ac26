// seed inserts two verified users and a batch of notifications into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/ninjahub/ninjahub-core/internal/cryptox"
	"github.com/ninjahub/ninjahub-core/internal/domain"
	"github.com/ninjahub/ninjahub-core/internal/hooks"
	"github.com/ninjahub/ninjahub-core/internal/infrastructure/postgres"
	"github.com/ninjahub/ninjahub-core/internal/usecase"
)

const (
	seedPassword      = "S3cure!pass"
	seedNotifications = 25
)

type userSpec struct {
	login, email, first, last string
	role                      domain.Role
}

var users = []userSpec{
	{"201000000001", "seed@test.local", "seed", "user", domain.RoleSubscriber},
	{"201000000002", "admin@test.local", "site", "admin", domain.RoleAdministrator},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set, run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL, postgres.WithApplicationName("ninjahub-seed"))
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	posts := usecase.NewPostService(postgres.NewPostRepository(pool), hooks.NewBus(slog.Default()))

	hash, err := cryptox.HashPassword(seedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	var seeded []*domain.User
	for _, spec := range users {
		u, err := upsertUser(ctx, userRepo, posts, spec, hash)
		if err != nil {
			log.Fatalf("seed user %s: %v", spec.email, err)
		}
		seeded = append(seeded, u)
	}

	owner := seeded[0]
	for i := range seedNotifications {
		n := domain.NewPost(domain.TypeNotification)
		n.AuthorID = owner.ID
		n.Title = fmt.Sprintf("Seed notification #%d", i+1)
		_ = n.SetMetaData("notification_type", "seed")
		_ = n.SetMetaData("object_id", strconv.FormatInt(owner.ProfileID(), 10))
		if _, err := posts.Insert(ctx, n); err != nil {
			log.Fatalf("insert notification %d: %v", i+1, err)
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	for _, u := range seeded {
		fmt.Printf("  %-14s id=%d  login=%s  email=%s\n", u.Role, u.ID, u.Username, u.Email)
	}
	fmt.Printf("  Password:      %s\n", seedPassword)
	fmt.Printf("  Notifications: %d added for user %d\n", seedNotifications, owner.ID)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1: log in as the seed user:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/ajax/login \\\n")
	fmt.Printf("      -d user_login=%s -d 'user_password=%s'\n", users[0].login, seedPassword)
	fmt.Println()
	fmt.Println("  Step 2: page through notifications:")
	fmt.Println()
	fmt.Println("    curl -s -X POST http://localhost:8080/ajax/load-more -d post_type=notification -d page=2 -d limit=10")
	fmt.Println()
	fmt.Println("  Step 3: preview and run the pruner (keeps NOTIFICATIONS_LIMIT per user):")
	fmt.Println()
	fmt.Println("    go run ./cmd/ninjactl prune --dry-run")
	fmt.Println("    go run ./cmd/ninjactl prune")
}

// upsertUser returns the existing user for spec.email or creates a verified
// one with a profile post.
func upsertUser(ctx context.Context, repo *postgres.UserRepository, posts *usecase.PostService, spec userSpec, hash string) (*domain.User, error) {
	u, err := repo.FindByEmail(ctx, spec.email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	u = domain.NewUser()
	u.Username = spec.login
	u.Email = spec.email
	u.PasswordHash = hash
	u.Role = spec.role
	_ = u.Meta.Set(domain.MetaFirstName, spec.first)
	_ = u.Meta.Set(domain.MetaLastName, spec.last)
	_ = u.Meta.Set(domain.MetaAccountVerification, "1")
	u.NormalizeNames()

	if u, err = repo.Create(ctx, u); err != nil {
		return nil, err
	}

	profile := domain.NewPost(domain.TypeProfile)
	profile.Title = u.DisplayName
	profile.AuthorID = u.ID
	_ = profile.SetMetaData("user_id", strconv.FormatInt(u.ID, 10))
	if profile, err = posts.Insert(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	profileID := strconv.FormatInt(profile.ID, 10)
	if err := repo.SetMeta(ctx, u.ID, map[string]string{domain.MetaProfileID: profileID}); err != nil {
		return nil, fmt.Errorf("store profile id: %w", err)
	}
	_ = u.Meta.Set(domain.MetaProfileID, profileID)
	return u, nil
}
