package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/TristanBrian/MamaCare/internal/models"
)

type memAvatarStore struct {
	objects map[string][]byte
	types   map[string]string
}

func (m *memAvatarStore) PutAvatar(_ context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if int64(len(data)) != size {
		return "", errors.New("size mismatch")
	}
	m.objects[key] = data
	m.types[key] = contentType
	return "https://cdn.example/" + key, nil
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func TestAvatarUpload(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	jane := env.register(t, "jane@x.com", "Jane", models.UserRolePatient)
	store := &memAvatarStore{objects: map[string][]byte{}, types: map[string]string{}}
	svc := NewAvatarService(store, env.auth, "secret", 1024, zerolog.Nop())

	updated, err := svc.Upload(ctx, jane, AvatarInput{File: bytes.NewReader(pngHeader), DeclaredType: "image/png"})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	url := updated.ProfileString("avatarUrl")
	if !strings.HasPrefix(url, "https://cdn.example/avatars/"+jane.ID+"/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("avatarUrl = %q", url)
	}
	if len(store.objects) != 1 {
		t.Fatalf("stored %d objects", len(store.objects))
	}

	again, err := svc.Upload(ctx, jane, AvatarInput{File: bytes.NewReader(pngHeader)})
	if err != nil {
		t.Fatalf("re-upload: %v", err)
	}
	if again.ProfileString("avatarUrl") != url {
		t.Error("identical content produced a different key")
	}
}

func TestAvatarUploadSanitizesSVG(t *testing.T) {
	env := newEnv(t)
	jane := env.register(t, "jane@x.com", "Jane", models.UserRolePatient)
	store := &memAvatarStore{objects: map[string][]byte{}, types: map[string]string{}}
	svc := NewAvatarService(store, env.auth, "secret", 1024, zerolog.Nop())

	doc := `<svg xmlns="http://www.w3.org/2000/svg" onload="alert(1)"><script>alert(2)</script><circle r="4"/></svg>`
	if _, err := svc.Upload(context.Background(), jane, AvatarInput{File: strings.NewReader(doc)}); err != nil {
		t.Fatalf("upload: %v", err)
	}
	for key, data := range store.objects {
		if bytes.Contains(data, []byte("script")) || bytes.Contains(data, []byte("onload")) {
			t.Fatalf("stored svg not sanitized: %s", data)
		}
		if store.types[key] != "image/svg+xml" {
			t.Fatalf("content type %q", store.types[key])
		}
	}
}

func TestAvatarUploadRejections(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	jane := env.register(t, "jane@x.com", "Jane", models.UserRolePatient)
	store := &memAvatarStore{objects: map[string][]byte{}, types: map[string]string{}}
	svc := NewAvatarService(store, env.auth, "secret", 32, zerolog.Nop())

	if _, err := svc.Upload(ctx, jane, AvatarInput{File: strings.NewReader("plain text, not an image")}); !errors.Is(err, ErrUnsupportedMedia) {
		t.Errorf("text: %v", err)
	}
	if _, err := svc.Upload(ctx, jane, AvatarInput{File: bytes.NewReader(pngHeader), DeclaredType: "image/jpeg"}); !errors.Is(err, ErrUnsupportedMedia) {
		t.Errorf("mismatched type: %v", err)
	}
	big := append(append([]byte{}, pngHeader...), make([]byte, 64)...)
	if _, err := svc.Upload(ctx, jane, AvatarInput{File: bytes.NewReader(big)}); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("too large: %v", err)
	}
	if _, err := svc.Upload(ctx, jane, AvatarInput{File: bytes.NewReader(nil)}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty: %v", err)
	}

	disabled := NewAvatarService(nil, env.auth, "secret", 32, zerolog.Nop())
	if _, err := disabled.Upload(ctx, jane, AvatarInput{File: bytes.NewReader(pngHeader)}); !errors.Is(err, ErrStorageDisabled) {
		t.Errorf("disabled: %v", err)
	}
	if len(store.objects) != 0 {
		t.Errorf("rejected uploads stored %d objects", len(store.objects))
	}
}
