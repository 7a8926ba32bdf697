package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/medvoyage/lead-service/internal/utils"
)

// ErrAttachmentTooLarge is returned when an upload exceeds the configured
// size limit.
var ErrAttachmentTooLarge = errors.New("attachment too large")

// AttachmentStore is the collaborator that holds a submission's single
// optional prescription or medical report. It returns a dereferenceable
// URL embedded in the lead record. Upload failures never block submission:
// the caller proceeds with an empty reference and surfaces a warning.
type AttachmentStore interface {
	Save(ctx context.Context, originalName string, content io.Reader) (string, error)
}

type localAttachmentStore struct {
	dir     string
	baseURL string
	maxSize int64
	logger  utils.Logger
}

// NewLocalAttachmentStore stores attachments on the local filesystem under
// generated unique names. originalName only contributes its extension.
func NewLocalAttachmentStore(dir, baseURL string, maxSize int64, logger utils.Logger) (AttachmentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment dir: %w", err)
	}
	return &localAttachmentStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
		logger:  logger,
	}, nil
}

func (s *localAttachmentStore) Save(ctx context.Context, originalName string, content io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	objectName := uuid.NewString() + ext

	path := filepath.Join(s.dir, objectName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create attachment file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(content, s.maxSize+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write attachment: %w", err)
	}
	if written > s.maxSize {
		os.Remove(path)
		return "", fmt.Errorf("%w: limit is %d bytes", ErrAttachmentTooLarge, s.maxSize)
	}

	s.logger.Info("Stored attachment", "object", objectName, "bytes", written)
	return s.baseURL + "/" + objectName, nil
}

// MockAttachmentStore is an in-memory AttachmentStore for tests.
type MockAttachmentStore struct {
	Saved    map[string][]byte
	FailWith error
}

func NewMockAttachmentStore() *MockAttachmentStore {
	return &MockAttachmentStore{Saved: make(map[string][]byte)}
}

func (m *MockAttachmentStore) Save(ctx context.Context, originalName string, content io.Reader) (string, error) {
	if m.FailWith != nil {
		return "", m.FailWith
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	m.Saved[name] = data
	return "mock://attachments/" + name, nil
}
