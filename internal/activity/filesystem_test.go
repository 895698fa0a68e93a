package activity

import (
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"portal/internal/models"

	"github.com/blevesearch/bleve/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openClient(t *testing.T, dir string) *FilesystemClient {
	t.Helper()
	client, err := NewFilesystemClient(models.ActivityConfiguration{
		Type:       "filesystem",
		Filesystem: &models.FilesystemActivityConfiguration{Directory: dir},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client.(*FilesystemClient)
}

type entry struct {
	action, userID, email string
	at                    time.Time
}

func record(t *testing.T, client *FilesystemClient, e entry) {
	t.Helper()
	require.NoError(t, client.Send(models.Activity{
		Message: e.action + " for " + e.email,
		Filter: models.LogFilter{
			Fields: map[string]string{
				"action":      e.action,
				"object_type": "user",
				"user_id":     e.userID,
				"email":       e.email,
				"client_ip":   "10.0.0.1",
			},
			Timestamp: strconv.FormatInt(e.at.UnixNano(), 10),
		},
		Object: map[string]any{"email": e.email},
	}))
}

func userIDs(results []map[string]any) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r["user_id"].(string))
	}
	return ids
}

func TestSendStoresEveryField(t *testing.T) {
	client := openClient(t, filepath.Join(t.TempDir(), "activity.bleve"))
	at := time.Now().Add(-time.Minute)
	record(t, client, entry{PasswordResetRequested, "u1", "user@example.com", at})

	results, err := client.Search(map[string][]string{"user_id": {"u1"}})
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, PasswordResetRequested, got["action"])
	assert.Equal(t, "user", got["object_type"])
	assert.Equal(t, "user@example.com", got["email"])
	assert.Equal(t, "10.0.0.1", got["client_ip"])
	assert.Equal(t, PasswordResetRequested+" for user@example.com", got["message"])
	assert.Equal(t, map[string]any{"email": "user@example.com"}, got["object"])

	nanos, err := strconv.ParseInt(got["timestamp"].(string), 10, 64)
	require.NoError(t, err)
	assert.WithinDuration(t, at, time.Unix(0, nanos), time.Second)
}

func TestSearch(t *testing.T) {
	client := openClient(t, filepath.Join(t.TempDir(), "activity.bleve"))
	now := time.Now()
	record(t, client, entry{PasswordResetRequested, "u1", "a@example.com", now.Add(-3 * time.Second)})
	record(t, client, entry{PasswordResetCompleted, "u1", "a@example.com", now.Add(-2 * time.Second)})
	record(t, client, entry{PasswordResetRejected, "u2", "b@example.com", now.Add(-time.Second)})
	record(t, client, entry{PasswordResetRequested, "u3", "c@example.com", now.AddDate(0, 0, -45)})

	cases := []struct {
		name     string
		criteria map[string][]string
		want     []string
	}{
		{
			name:     "alternatives within one field",
			criteria: map[string][]string{"action": {PasswordResetRequested, PasswordResetRejected}},
			want:     []string{"u2", "u1"},
		},
		{
			name: "fields are combined",
			criteria: map[string][]string{
				"action": {PasswordResetRequested, PasswordResetCompleted},
				"email":  {"a@example.com"},
			},
			want: []string{"u1", "u1"},
		},
		{
			name:     "no criteria lists the window newest first",
			criteria: map[string][]string{},
			want:     []string{"u2", "u1", "u1"},
		},
		{
			name:     "entries outside the window are skipped",
			criteria: map[string][]string{"email": {"c@example.com"}},
			want:     []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			results, err := client.Search(tc.criteria)
			require.NoError(t, err)
			assert.Equal(t, tc.want, userIDs(results))
		})
	}
}

func TestObjectKeptOnlyForKnownTypes(t *testing.T) {
	client := openClient(t, filepath.Join(t.TempDir(), "activity.bleve"))

	require.NoError(t, client.Send(models.Activity{
		Message: "something else",
		Filter: models.LogFilter{
			Fields:    map[string]string{"action": "OTHER", "object_type": "invoice", "user_id": "u9"},
			Timestamp: strconv.FormatInt(time.Now().UnixNano(), 10),
		},
		Object: map[string]any{"total": 12},
	}))

	results, err := client.Search(map[string][]string{"user_id": {"u9"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NotContains(t, results[0], "object")
}

func TestSendRejectsMalformedTimestamp(t *testing.T) {
	client := openClient(t, filepath.Join(t.TempDir(), "activity.bleve"))

	err := client.Send(models.Activity{
		Message: "broken",
		Filter:  models.LogFilter{Fields: map[string]string{}, Timestamp: "yesterday"},
	})
	assert.Error(t, err)
}

func TestReopenIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "activity.bleve")

	first, err := NewFilesystemClient(models.ActivityConfiguration{
		Filesystem: &models.FilesystemActivityConfiguration{Directory: dir},
	})
	require.NoError(t, err)
	record(t, first.(*FilesystemClient), entry{PasswordResetRequested, "u1", "a@example.com", time.Now()})
	require.NoError(t, first.Close())

	results, err := openClient(t, dir).Search(map[string][]string{"user_id": {"u1"}})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestOpenRejectsForeignIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "activity.bleve")

	index, err := bleve.New(dir, bleve.NewIndexMapping())
	require.NoError(t, err)
	require.NoError(t, index.SetInternal(indexVersionKey, []byte("0")))
	require.NoError(t, index.Close())

	_, err = NewFilesystemClient(models.ActivityConfiguration{
		Filesystem: &models.FilesystemActivityConfiguration{Directory: dir},
	})
	assert.ErrorContains(t, err, "expected")
}
