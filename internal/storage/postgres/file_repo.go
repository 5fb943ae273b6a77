package postgres

import (
	"taskwell/internal/domain/file"
)

// FileRepo implements file.Repository for blob metadata.
type FileRepo struct {
	*BaseRepo[*file.File]
}

var _ file.Repository = (*FileRepo)(nil)

// NewFileRepo creates a file-metadata repository.
func NewFileRepo(txManager *TxManager) *FileRepo {
	return &FileRepo{
		BaseRepo: NewBaseRepo(txManager, "files", func() *file.File { return &file.File{} }),
	}
}
