package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/TristanBrian/MamaCare/internal/media/sniffer"
	"github.com/TristanBrian/MamaCare/internal/media/svg"
	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/security"
)

// AvatarStore persists avatar images and returns their public URL.
type AvatarStore interface {
	PutAvatar(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

type AvatarInput struct {
	File io.Reader
	// DeclaredType is the part's Content-Type header, if any.
	DeclaredType string
}

type AvatarService struct {
	store         AvatarStore
	auth          *AuthService
	signingSecret string
	maxSize       int64
	log           zerolog.Logger
}

// NewAvatarService returns a service that rejects uploads with
// ErrStorageDisabled when store is nil.
func NewAvatarService(store AvatarStore, auth *AuthService, signingSecret string, maxSize int64, log zerolog.Logger) *AvatarService {
	return &AvatarService{store: store, auth: auth, signingSecret: signingSecret, maxSize: maxSize, log: log}
}

// Upload stores the image and records its URL as profileData.avatarUrl.
func (s *AvatarService) Upload(ctx context.Context, user models.User, input AvatarInput) (models.User, error) {
	if s.store == nil {
		return models.User{}, ErrStorageDisabled
	}
	if input.File == nil {
		return models.User{}, invalid("file", "is required")
	}

	data, err := io.ReadAll(io.LimitReader(input.File, s.maxSize+1))
	if err != nil {
		return models.User{}, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return models.User{}, invalid("file", "is empty")
	}
	if int64(len(data)) > s.maxSize {
		return models.User{}, ErrFileTooLarge
	}

	head := data
	if len(head) > sniffer.HeadSize {
		head = head[:sniffer.HeadSize]
	}
	result, err := sniffer.DetectHead(head)
	if err != nil {
		return models.User{}, ErrUnsupportedMedia
	}
	if input.DeclaredType != "" && input.DeclaredType != "application/octet-stream" && input.DeclaredType != result.MIME {
		return models.User{}, ErrUnsupportedMedia
	}

	if result.Type == sniffer.TypeSVG {
		clean, err := svg.Sanitize(data)
		if err != nil {
			if errors.Is(err, svg.ErrNotSVG) {
				return models.User{}, ErrUnsupportedMedia
			}
			return models.User{}, err
		}
		data = clean
	}

	sum := sha256.Sum256(data)
	digest := security.SignResource(s.signingSecret, user.ID, hex.EncodeToString(sum[:]))
	key := fmt.Sprintf("avatars/%s/%s.%s", user.ID, digest[:16], result.Extension())

	url, err := s.store.PutAvatar(ctx, key, bytes.NewReader(data), int64(len(data)), result.MIME)
	if err != nil {
		return models.User{}, fmt.Errorf("put avatar: %w", err)
	}

	updated, err := s.auth.SetProfileValue(ctx, user.ID, "avatarUrl", url)
	if err != nil {
		return models.User{}, err
	}
	s.log.Info().Str("user_id", user.ID).Str("object_key", key).Msg("avatar uploaded")
	return updated, nil
}
