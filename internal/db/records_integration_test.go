package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rizzrioo06/careermate/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestUser(t *testing.T, db *DB) uuid.UUID {
	t.Helper()
	id, err := db.CreateUser(context.Background(), "Record Owner", "records-"+uuid.New().String()+"@example.com")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.DeleteUser(context.Background(), id) })
	return id
}

func TestIntegration_RecordLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()
	userID := createTestUser(t, db)

	rec, err := db.CreateRecord(ctx, &CreateRecordInput{
		UserID:  userID,
		Kind:    types.KindGuidance,
		Title:   "Career guidance",
		Profile: map[string]any{"currentRole": "Analyst"},
		Content: map[string]any{"careerPaths": []any{"Data Scientist"}, "skillGaps": "n/a"},
	})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, types.KindGuidance, rec.Kind)
	assert.Equal(t, "Analyst", rec.Profile["currentRole"])

	// Content is normalized on the way in
	paths := rec.Content["careerPaths"].([]any)
	require.Len(t, paths, 1)
	assert.Equal(t, "Data Scientist", paths[0].(map[string]any)["title"])
	assert.Equal(t, []any{}, rec.Content["skillGaps"])
	assert.Contains(t, rec.Content, "learningRoadmap")

	got, err := db.GetRecord(ctx, userID, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.Content, got.Content)

	// Replacement is normalized too
	updated, err := db.ReplaceRecordContent(ctx, userID, rec.ID, map[string]any{"careerPaths": "oops"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, []any{}, updated.Content["careerPaths"])
	assert.False(t, updated.UpdatedAt.Before(rec.UpdatedAt))

	deleted, err := db.DeleteRecord(ctx, userID, rec.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err = db.GetRecord(ctx, userID, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIntegration_RecordOwnership(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()
	owner := createTestUser(t, db)
	other := createTestUser(t, db)

	rec, err := db.CreateRecord(ctx, &CreateRecordInput{UserID: owner, Kind: types.KindJobs, Title: "Jobs"})
	require.NoError(t, err)

	got, err := db.GetRecord(ctx, other, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	replaced, err := db.ReplaceRecordContent(ctx, other, rec.ID, map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, replaced)

	deleted, err := db.DeleteRecord(ctx, other, rec.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestIntegration_ListAndCount(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()
	userID := createTestUser(t, db)

	for _, kind := range []types.RecordKind{types.KindJobs, types.KindJobs, types.KindStories} {
		_, err := db.CreateRecord(ctx, &CreateRecordInput{UserID: userID, Kind: kind, Title: string(kind)})
		require.NoError(t, err)
	}

	all, err := db.ListRecords(ctx, userID, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	jobs, err := db.ListRecords(ctx, userID, types.KindJobs, 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	limited, err := db.ListRecords(ctx, userID, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	counts, err := db.CountRecordsByKind(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[types.KindJobs])
	assert.Equal(t, 1, counts[types.KindStories])
	assert.Equal(t, 0, counts[types.KindGuidance])
	assert.Len(t, counts, len(types.AllKinds()))
}

func TestCreateRecord_UnknownKind(t *testing.T) {
	db := &DB{}
	_, err := db.CreateRecord(context.Background(), &CreateRecordInput{Kind: "resume"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown record kind")
}
