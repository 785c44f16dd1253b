package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGroup(index, n int) Group {
	items := make([]ImageItem, n)
	for i := range items {
		items[i] = ImageItem{Name: fmt.Sprintf("op%d-img%02d.jpg", index, i+1)}
	}
	return Group{Index: index, Items: items}
}

func TestRunGroup_AllSucceed(t *testing.T) {
	storage := newFakeStorage()
	r := &Runner{
		Extractor: &fakeExtractor{},
		Builder:   &fakeBuilder{},
		Storage:   storage,
	}

	group := testGroup(1, 3)
	results, err := r.RunGroup(context.Background(), group, "folder-1")
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, res := range results {
		assert.Equal(t, StatusSuccess, res.Status)
		assert.Equal(t, 1, res.Operation)
		assert.Equal(t, i+1, res.GlobalIndex)
		require.NotNil(t, res.Fields)
		assert.NotEmpty(t, res.DocURL)
		assert.Empty(t, res.Err)
	}

	rows := storage.csvs["folder-1/batch_results.csv"]
	require.Len(t, rows, 4) // header + 3 items
	assert.Equal(t, resultHeader, rows[0])
	assert.Equal(t, "SUCCESS", rows[1][7])
}

func TestRunGroup_FailureIsolation(t *testing.T) {
	storage := newFakeStorage()
	r := &Runner{
		Extractor: &fakeExtractor{failOn: map[string]bool{"op1-img02.jpg": true}},
		Builder:   &fakeBuilder{},
		Storage:   storage,
	}

	group := testGroup(1, 4)
	results, err := r.RunGroup(context.Background(), group, "folder-1")
	require.NoError(t, err)

	// The failed item never prevents later items from being processed and
	// the group still contributes one result per item.
	require.Len(t, results, len(group.Items))
	assert.Equal(t, StatusFailed, results[1].Status)
	assert.Contains(t, results[1].Err, "unreadable label")
	assert.Nil(t, results[1].Fields)
	assert.Empty(t, results[1].DocURL)
	assert.Equal(t, StatusSuccess, results[2].Status)
	assert.Equal(t, StatusSuccess, results[3].Status)

	// Failure row in the CSV has empty field columns and a populated error.
	rows := storage.csvs["folder-1/batch_results.csv"]
	require.Len(t, rows, 5)
	failed := rows[2]
	assert.Equal(t, []string{"", "", "", "", ""}, failed[2:7])
	assert.Equal(t, "FAILED", failed[7])
	assert.NotEmpty(t, failed[8])
}

func TestRunGroup_BuilderFailureTreatedLikeExtractionFailure(t *testing.T) {
	storage := newFakeStorage()
	r := &Runner{
		Extractor: &fakeExtractor{},
		Builder:   &fakeBuilder{failOn: map[string]bool{"SN-op1-img01.jpg": true}},
		Storage:   storage,
	}

	results, err := r.RunGroup(context.Background(), testGroup(1, 2), "folder-1")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Contains(t, results[0].Err, "docs API rejected")
	assert.Nil(t, results[0].Fields)
	assert.Equal(t, StatusSuccess, results[1].Status)
}

func TestRunGroup_GlobalIndexForLaterGroup(t *testing.T) {
	storage := newFakeStorage()
	r := &Runner{
		Extractor: &fakeExtractor{},
		Builder:   &fakeBuilder{},
		Storage:   storage,
	}

	// Group 2, position 25 -> global index 75.
	results, err := r.RunGroup(context.Background(), testGroup(2, 30), "folder-2")
	require.NoError(t, err)
	assert.Equal(t, 75, results[24].GlobalIndex)
	assert.Equal(t, 2, results[24].Operation)
}

func TestRunGroup_CSVWriteFailureIsFatal(t *testing.T) {
	storage := newFakeStorage()
	storage.failCSV = "batch_results.csv"
	r := &Runner{
		Extractor: &fakeExtractor{},
		Builder:   &fakeBuilder{},
		Storage:   storage,
	}

	_, err := r.RunGroup(context.Background(), testGroup(1, 1), "folder-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch_results.csv")
}

func TestRunGroup_OnResultCallback(t *testing.T) {
	var seen []string
	r := &Runner{
		Extractor: &fakeExtractor{failOn: map[string]bool{"op1-img01.jpg": true}},
		Builder:   &fakeBuilder{},
		Storage:   newFakeStorage(),
		OnResult: func(res ProcessResult) {
			seen = append(seen, res.Status)
		},
	}

	_, err := r.RunGroup(context.Background(), testGroup(1, 2), "folder-1")
	require.NoError(t, err)
	assert.Equal(t, []string{StatusFailed, StatusSuccess}, seen)
}
