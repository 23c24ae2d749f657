package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"time"

	"lingo/lingo/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var ErrObjectNotFound = errors.New("object not found")

type MinIOClient struct {
	client *minio.Client
	bucket string
}

type TranslationObject struct {
	TargetLang string    `json:"target_lang"`
	Text       string    `json:"text"`
	Translated string    `json:"translated"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewMinIOClient(ctx context.Context, cfg config.Config) (*MinIOClient, error) {
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: cfg.MinIOSecure,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}
	return &MinIOClient{client: client, bucket: cfg.MinIOBucket}, nil
}

func avatarKey(userID int) string {
	return path.Join("avatars", strconv.Itoa(userID))
}

// TranslationKey hashes the (language, text) pair into an object key.
func TranslationKey(targetLang, text string) string {
	hash := fmt.Sprintf("%x", md5.Sum([]byte(targetLang+"|"+text)))
	return path.Join("translations", hash+".json")
}

func (m *MinIOClient) PutAvatar(ctx context.Context, userID int, contentType string, data []byte) (string, error) {
	key := avatarKey(userID)
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return key, nil
}

// GetAvatar returns the avatar body and its content type. The caller closes the body.
func (m *MinIOClient) GetAvatar(ctx context.Context, userID int) (io.ReadCloser, string, error) {
	key := avatarKey(userID)
	info, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, "", notFound(err)
	}
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", notFound(err)
	}
	return obj, info.ContentType, nil
}

func (m *MinIOClient) GetTranslation(ctx context.Context, targetLang, text string) (string, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, TranslationKey(targetLang, text), minio.GetObjectOptions{})
	if err != nil {
		return "", notFound(err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return "", notFound(err)
	}
	var cached TranslationObject
	if err := json.Unmarshal(data, &cached); err != nil {
		return "", err
	}
	return cached.Translated, nil
}

func (m *MinIOClient) PutTranslation(ctx context.Context, targetLang, text, translated string) error {
	data, err := json.Marshal(TranslationObject{
		TargetLang: targetLang,
		Text:       text,
		Translated: translated,
		Timestamp:  time.Now(),
	})
	if err != nil {
		return err
	}
	_, err = m.client.PutObject(ctx, m.bucket, TranslationKey(targetLang, text), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: "application/json"})
	return err
}

func (m *MinIOClient) Ping(ctx context.Context) error {
	_, err := m.client.BucketExists(ctx, m.bucket)
	return err
}

func notFound(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrObjectNotFound
	}
	return err
}
