package file

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/appctx"
	"taskwell/internal/core/id"
)

// --- in-memory fakes ---

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	files map[id.ID]*File
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{files: make(map[id.ID]*File)}
}

func (r *fakeRepo) Create(ctx context.Context, f *File) error {
	cp := *f
	r.files[f.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, fileID id.ID) (*File, error) {
	if f, ok := r.files[fileID]; ok && !f.DeletionMark {
		cp := *f
		return &cp, nil
	}
	return nil, apperror.NewNotFound("file", fileID)
}

func (r *fakeRepo) SetDeletionMark(ctx context.Context, fileID id.ID, marked bool) error {
	if f, ok := r.files[fileID]; ok {
		f.DeletionMark = marked
		return nil
	}
	return apperror.NewNotFound("file", fileID)
}

type fakeBlobs struct {
	blobs map[string][]byte
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{blobs: make(map[string][]byte)}
}

func (b *fakeBlobs) Store(ctx context.Context, data []byte) (string, error) {
	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])
	b.blobs[key] = data
	return key, nil
}

func (b *fakeBlobs) Fetch(ctx context.Context, key string) ([]byte, error) {
	if data, ok := b.blobs[key]; ok {
		return data, nil
	}
	return nil, apperror.NewNotFound("blob", key)
}

func memberCtx(tenantID id.ID) context.Context {
	return appctx.WithPrincipal(context.Background(), &appctx.Principal{
		AccountID: id.New(),
		TenantID:  &tenantID,
	})
}

// --- tests ---

func TestUpload_RequiresTenant(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeBlobs(), nopTxManager{})

	_, err := svc.Upload(context.Background(), "notes.txt", "text/plain", []byte("hi"))
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestUploadAndDownload_RoundTrip(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeBlobs(), nopTxManager{})
	ctx := memberCtx(id.New())

	content := []byte("quarterly report")
	f, err := svc.Upload(ctx, "report.txt", "text/plain", content)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), f.Size)

	got, data, err := svc.Download(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
	assert.Equal(t, content, data)
}

func TestDownload_CrossTenantDenied(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeBlobs(), nopTxManager{})

	f, err := svc.Upload(memberCtx(id.New()), "report.txt", "text/plain", []byte("x"))
	require.NoError(t, err)

	_, _, err = svc.Download(memberCtx(id.New()), f.ID)
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestDelete_HidesMetadataOnly(t *testing.T) {
	blobs := newFakeBlobs()
	svc := NewService(newFakeRepo(), blobs, nopTxManager{})
	ctx := memberCtx(id.New())

	f, err := svc.Upload(ctx, "report.txt", "text/plain", []byte("x"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, f.ID))

	_, err = svc.Get(ctx, f.ID)
	assert.True(t, apperror.IsNotFound(err))

	// The blob survives; its key may be shared with other files.
	_, err = blobs.Fetch(ctx, f.Key)
	assert.NoError(t, err)
}
