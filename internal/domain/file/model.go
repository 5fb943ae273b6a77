// Package file provides stored file metadata and the blob-store
// collaborator boundary. Blob bytes live outside the database; only
// metadata and the storage key are persisted.
package file

import (
	"context"
	"time"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/id"
)

// File is tenant-owned metadata of a stored blob.
type File struct {
	ID           id.ID     `db:"id" json:"id"`
	TenantID     id.ID     `db:"tenant_id" json:"tenantId"`
	Name         string    `db:"name" json:"name"`
	Key          string    `db:"key" json:"-"`
	Size         int64     `db:"size" json:"size"`
	ContentType  string    `db:"content_type" json:"contentType,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	DeletionMark bool      `db:"deletion_mark" json:"-"`
	Version      int       `db:"version" json:"version"`
}

// NewFile creates file metadata for a stored blob.
func NewFile(tenantID id.ID, name, key, contentType string, size int64) *File {
	return &File{
		ID:          id.New(),
		TenantID:    tenantID,
		Name:        name,
		Key:         key,
		Size:        size,
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
		Version:     1,
	}
}

// Validate checks file invariants.
func (f *File) Validate(ctx context.Context) error {
	if f.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	return nil
}

// OwningTenant implements guard.TenantOwned.
func (f *File) OwningTenant() *id.ID { return &f.TenantID }

// EntityName implements guard.TenantOwned.
func (f *File) EntityName() string { return "file" }

// EntityID implements guard.TenantOwned.
func (f *File) EntityID() id.ID { return f.ID }

// Repository defines persistence for file metadata.
type Repository interface {
	Create(ctx context.Context, file *File) error
	GetByID(ctx context.Context, fileID id.ID) (*File, error)
	SetDeletionMark(ctx context.Context, fileID id.ID, marked bool) error
}

// BlobStore is the byte-storage collaborator: content in, key out.
type BlobStore interface {
	Store(ctx context.Context, data []byte) (string, error)
	Fetch(ctx context.Context, key string) ([]byte, error)
}
