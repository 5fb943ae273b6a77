package file

import (
	"context"
	"fmt"

	"taskwell/internal/core/appctx"
	"taskwell/internal/core/guard"
	"taskwell/internal/core/id"
	"taskwell/internal/core/tx"
	"taskwell/pkg/logger"
)

// Service provides business logic for stored files.
type Service struct {
	repo      Repository
	blobs     BlobStore
	txManager tx.Manager
}

// NewService creates a new file service.
func NewService(repo Repository, blobs BlobStore, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		blobs:     blobs,
		txManager: txManager,
	}
}

// Upload stores the blob and records metadata owned by the current tenant.
func (s *Service) Upload(ctx context.Context, name, contentType string, data []byte) (*File, error) {
	tenantID, err := appctx.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}

	key, err := s.blobs.Store(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	f := NewFile(tenantID, name, key, contentType, int64(len(data)))
	if err := f.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, f)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "file uploaded", "file_id", f.ID, "size", f.Size)
	return f, nil
}

// Get resolves file metadata and authorizes tenant access.
func (s *Service) Get(ctx context.Context, fileID id.ID) (*File, error) {
	f, err := s.repo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if err := guard.ValidateEntityAccess(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Download returns the metadata and blob bytes.
func (s *Service) Download(ctx context.Context, fileID id.ID) (*File, []byte, error) {
	f, err := s.Get(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.blobs.Fetch(ctx, f.Key)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch blob: %w", err)
	}
	return f, data, nil
}

// Delete soft-deletes the metadata. Blob bytes are retained; keys are
// content-addressed and may be shared between files.
func (s *Service) Delete(ctx context.Context, fileID id.ID) error {
	f, err := s.Get(ctx, fileID)
	if err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetDeletionMark(ctx, f.ID, true)
	})
}
