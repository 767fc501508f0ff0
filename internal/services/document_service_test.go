package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivamm1101/doc-ai/internal/logger"
	"github.com/Shivamm1101/doc-ai/internal/models"
)

func TestUpload_SavesArchivesAndIngests(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "documents")
	ing := &fakeIngestor{}
	objects := &fakeObjects{}
	svc := NewDocumentService(&fakeDB{}, objects, "plans", ing, dir, logger.Nop())

	res, err := svc.Upload(context.Background(), "../../etc/Bill of Quantities.pdf", "application/pdf", strings.NewReader("%PDF-1.7"))

	require.NoError(t, err)
	require.Len(t, ing.paths, 1)
	local := ing.paths[0]
	assert.Equal(t, "Bill of Quantities.pdf", filepath.Base(local))
	assert.Equal(t, dir, filepath.Dir(filepath.Dir(local)))
	b, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(b))

	assert.Equal(t, "%PDF-1.7", objects.body)
	assert.True(t, strings.HasPrefix(objects.key, "documents/"))
	assert.Equal(t, "documents/"+filepath.Base(filepath.Dir(local))+"/Bill_of_Quantities.pdf", objects.key)
	assert.Contains(t, res.StorageURL, objects.key)
	assert.EqualValues(t, 11, res.DocumentID)
}

func TestUpload_WithoutStorage(t *testing.T) {
	svc := NewDocumentService(&fakeDB{}, nil, "", &fakeIngestor{}, t.TempDir(), logger.Nop())

	res, err := svc.Upload(context.Background(), "boq.PDF", "", strings.NewReader("x"))

	require.NoError(t, err)
	assert.Empty(t, res.StorageURL)
	assert.Equal(t, 3, res.Records)
}

func TestUpload_ArchiveFailureDoesNotBlockIngest(t *testing.T) {
	ing := &fakeIngestor{}
	svc := NewDocumentService(&fakeDB{}, &fakeObjects{err: errors.New("denied")}, "plans", ing, t.TempDir(), logger.Nop())

	res, err := svc.Upload(context.Background(), "boq.pdf", "", strings.NewReader("x"))

	require.NoError(t, err)
	assert.Empty(t, res.StorageURL)
	assert.Len(t, ing.paths, 1)
}

func TestUpload_RejectsBadNames(t *testing.T) {
	ing := &fakeIngestor{}
	svc := NewDocumentService(&fakeDB{}, nil, "", ing, t.TempDir(), logger.Nop())

	_, err := svc.Upload(context.Background(), "notes.txt", "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNotPDF)

	_, err = svc.Upload(context.Background(), "  ", "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidFilename)
	assert.Empty(t, ing.paths)
}

func TestUpload_IngestErrorPropagatesAndRemovesFile(t *testing.T) {
	boom := errors.New("classify failed")
	dir := t.TempDir()
	ing := &fakeIngestor{err: boom}
	svc := NewDocumentService(&fakeDB{}, nil, "", ing, dir, logger.Nop())

	_, err := svc.Upload(context.Background(), "boq.pdf", "", strings.NewReader("x"))

	assert.ErrorIs(t, err, boom)
	require.Len(t, ing.paths, 1)
	_, statErr := os.Stat(ing.paths[0])
	assert.True(t, os.IsNotExist(statErr))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_SameNameKeepsSeparateFiles(t *testing.T) {
	dir := t.TempDir()
	ing := &fakeIngestor{}
	svc := NewDocumentService(&fakeDB{}, nil, "", ing, dir, logger.Nop())

	_, err := svc.Upload(context.Background(), "boq.pdf", "", strings.NewReader("first"))
	require.NoError(t, err)
	_, err = svc.Upload(context.Background(), "boq.pdf", "", strings.NewReader("second"))
	require.NoError(t, err)

	require.Len(t, ing.paths, 2)
	assert.NotEqual(t, ing.paths[0], ing.paths[1])
	assert.Equal(t, []string{"first", "second"}, ing.bodies)
	for i, want := range []string{"first", "second"} {
		assert.Equal(t, "boq.pdf", filepath.Base(ing.paths[i]))
		b, err := os.ReadFile(ing.paths[i])
		require.NoError(t, err)
		assert.Equal(t, want, string(b))
	}
}

func TestDocumentService_List(t *testing.T) {
	svc := NewDocumentService(&fakeDB{}, nil, "", &fakeIngestor{}, t.TempDir(), logger.Nop())

	docs, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 4, docs[0].CostItems)
}

func TestDocumentService_GetAndCostItems(t *testing.T) {
	db := &fakeDB{
		docs:  map[int64]*models.Document{5: {ID: 5, Name: "boq.pdf", Type: models.DocumentTypeCosting}},
		costs: map[int64][]models.CostItem{5: {{DocumentID: 5, ItemName: "Rebar"}}},
	}
	svc := NewDocumentService(db, nil, "", &fakeIngestor{}, t.TempDir(), logger.Nop())

	doc, err := svc.Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "boq.pdf", doc.Name)

	items, err := svc.CostItems(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Rebar", items[0].ItemName)

	_, err = svc.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.CostItems(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}
