package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/ninjahub/ninjahub-core/internal/domain"
	"github.com/ninjahub/ninjahub-core/internal/usecase"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func (s *fakeStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = b
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) URL(key string) string { return "https://cdn.example.com/" + key }

type fakeAttachmentRepo struct {
	create  func(ctx context.Context, a *domain.Attachment) (*domain.Attachment, error)
	getByID func(ctx context.Context, id int64) (*domain.Attachment, error)
	delete  func(ctx context.Context, id, ownerID int64) error
}

func (r *fakeAttachmentRepo) Create(ctx context.Context, a *domain.Attachment) (*domain.Attachment, error) {
	return r.create(ctx, a)
}

func (r *fakeAttachmentRepo) GetByID(ctx context.Context, id int64) (*domain.Attachment, error) {
	return r.getByID(ctx, id)
}

func (r *fakeAttachmentRepo) Delete(ctx context.Context, id, ownerID int64) error {
	return r.delete(ctx, id, ownerID)
}

type attachmentFixture struct {
	store *fakeStore
	saved map[int64]*domain.Attachment
	uc    *usecase.AttachmentUsecase
}

func newAttachmentFixture(t *testing.T, filters *fakeFilters) *attachmentFixture {
	t.Helper()
	f := &attachmentFixture{store: &fakeStore{}, saved: map[int64]*domain.Attachment{}}
	repo := &fakeAttachmentRepo{
		create: func(_ context.Context, a *domain.Attachment) (*domain.Attachment, error) {
			a.ID = int64(len(f.saved) + 1)
			f.saved[a.ID] = a
			return a, nil
		},
		getByID: func(_ context.Context, id int64) (*domain.Attachment, error) {
			if a, ok := f.saved[id]; ok {
				return a, nil
			}
			return nil, domain.ErrAttachmentNotFound
		},
		delete: func(_ context.Context, id, owner int64) error {
			if a, ok := f.saved[id]; !ok || a.OwnerID != owner {
				return domain.ErrAttachmentNotFound
			}
			delete(f.saved, id)
			return nil
		},
	}
	if filters == nil {
		filters = &fakeFilters{}
	}
	f.uc = usecase.NewAttachmentUsecase(repo, f.store, newCryptor(t), filters, 5<<20, discard)
	return f
}

func TestUpload_StoresAndEncryptsID(t *testing.T) {
	f := newAttachmentFixture(t, nil)
	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 5000)...)

	res, err := f.uc.Upload(context.Background(), usecase.UploadInput{
		OwnerID: 9, FileName: "Avatar.PNG", Size: int64(len(body)), Body: bytes.NewReader(body),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	plain, err := newCryptor(t).Decrypt(res.AttachmentID)
	if err != nil || plain != "1" {
		t.Errorf("attachment id decrypts to %q, %v", plain, err)
	}
	a := f.saved[1]
	if a.MimeType != "image/png" || a.OwnerID != 9 || !strings.HasPrefix(a.ObjectKey, "attachments/9/") || !strings.HasSuffix(a.ObjectKey, ".png") {
		t.Errorf("attachment = %+v", a)
	}
	if !bytes.Equal(f.store.objects[a.ObjectKey], body) {
		t.Error("stored bytes differ from upload")
	}
	if res.URL != "https://cdn.example.com/"+a.ObjectKey {
		t.Errorf("url = %q", res.URL)
	}
}

func TestUpload_Rejections(t *testing.T) {
	f := newAttachmentFixture(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		in   usecase.UploadInput
		want error
	}{
		{"no file", usecase.UploadInput{OwnerID: 1}, domain.ErrEmptyFile},
		{"zero size", usecase.UploadInput{OwnerID: 1, FileName: "a.png", Body: bytes.NewReader(pngHeader)}, domain.ErrFileTooLarge},
		{"too large", usecase.UploadInput{OwnerID: 1, FileName: "a.png", Size: 5 << 20, Body: bytes.NewReader(pngHeader)}, domain.ErrFileTooLarge},
		{"empty body", usecase.UploadInput{OwnerID: 1, FileName: "a.png", Size: 10, Body: bytes.NewReader(nil)}, domain.ErrEmptyFile},
		{"renamed text", usecase.UploadInput{OwnerID: 1, FileName: "a.png", Size: 11, Body: strings.NewReader("hello world")}, domain.ErrInvalidFileType},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.uc.Upload(ctx, tc.in); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if len(f.store.objects) != 0 {
		t.Error("rejected uploads reached storage")
	}
}

func TestUpload_AcceptedTypesFilter(t *testing.T) {
	filters := &fakeFilters{apply: func(_ context.Context, hook string, value any, _ ...any) any {
		if hook != usecase.FilterAcceptedTypes {
			return value
		}
		return []string{"text/plain"}
	}}
	f := newAttachmentFixture(t, filters)
	ctx := context.Background()

	if _, err := f.uc.Upload(ctx, usecase.UploadInput{OwnerID: 1, FileName: "n.txt", Size: 11, Body: strings.NewReader("hello world")}); err != nil {
		t.Errorf("text upload with widened filter: %v", err)
	}
	if _, err := f.uc.Upload(ctx, usecase.UploadInput{OwnerID: 1, FileName: "a.png", Size: int64(len(pngHeader)), Body: bytes.NewReader(pngHeader)}); !errors.Is(err, domain.ErrInvalidFileType) {
		t.Errorf("png upload with narrowed filter err = %v", err)
	}
}

func TestRemove(t *testing.T) {
	f := newAttachmentFixture(t, nil)
	ctx := context.Background()

	res, err := f.uc.Upload(ctx, usecase.UploadInput{OwnerID: 9, FileName: "a.png", Size: int64(len(pngHeader)), Body: bytes.NewReader(pngHeader)})
	if err != nil {
		t.Fatal(err)
	}

	if err := f.uc.Remove(ctx, 10, res.AttachmentID); !errors.Is(err, domain.ErrAttachmentRemoval) {
		t.Errorf("foreign owner err = %v", err)
	}
	if err := f.uc.Remove(ctx, 9, "garbage"); !errors.Is(err, domain.ErrAttachmentRemoval) {
		t.Errorf("garbage id err = %v", err)
	}
	if err := f.uc.Remove(ctx, 9, res.AttachmentID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(f.store.objects) != 0 || len(f.saved) != 0 {
		t.Error("attachment not removed from storage and repository")
	}
	if err := f.uc.Remove(ctx, 9, res.AttachmentID); !errors.Is(err, domain.ErrAttachmentRemoval) {
		t.Errorf("second remove err = %v", err)
	}
}
