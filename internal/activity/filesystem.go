package activity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"portal/internal/models"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	indexVersion = "portal-1"
	searchWindow = 30 * 24 * time.Hour
	searchLimit  = 100
)

var indexVersionKey = []byte("index_version")

// document is what one activity looks like inside the index.
type document struct {
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	ObjectType string    `json:"object_type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	ClientIP   string    `json:"client_ip"`
	Reason     string    `json:"reason"`
	Object     string    `json:"object"`
}

// keywordFields are the filter fields; Search matches them exactly.
var keywordFields = []string{"action", "object_type", "user_id", "email", "client_ip", "reason"}

// FilesystemClient keeps the activity trail in a bleve index on local disk.
type FilesystemClient struct {
	index bleve.Index
}

func NewFilesystemClient(config models.ActivityConfiguration) (IActivityLogger, error) {
	dir := config.Filesystem.Directory

	index, err := bleve.Open(dir)
	switch {
	case errors.Is(err, bleve.ErrorIndexPathDoesNotExist):
		return createIndex(dir)
	case err != nil:
		return nil, fmt.Errorf("failed to open activity index: %w", err)
	}

	version, err := index.GetInternal(indexVersionKey)
	if err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("failed to read activity index version: %w", err)
	}
	if string(version) != indexVersion {
		_ = index.Close()
		return nil, fmt.Errorf("activity index at %s has version %q, expected %q", dir, version, indexVersion)
	}

	zap.L().Info("Opened activity index", zap.String("directory", dir))
	return &FilesystemClient{index: index}, nil
}

func createIndex(dir string) (*FilesystemClient, error) {
	index, err := bleve.New(dir, newIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create activity index: %w", err)
	}
	if err = index.SetInternal(indexVersionKey, []byte(indexVersion)); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("failed to stamp activity index version: %w", err)
	}

	zap.L().Info("Created activity index", zap.String("directory", dir))
	return &FilesystemClient{index: index}, nil
}

func newIndexMapping() *mapping.IndexMappingImpl {
	keyword := bleve.NewKeywordFieldMapping()

	storedOnly := bleve.NewTextFieldMapping()
	storedOnly.Index = false

	doc := bleve.NewDocumentMapping()
	for _, field := range keywordFields {
		doc.AddFieldMappingsAt(field, keyword)
	}
	doc.AddFieldMappingsAt("timestamp", bleve.NewDateTimeFieldMapping())
	doc.AddFieldMappingsAt("message", bleve.NewTextFieldMapping())
	doc.AddFieldMappingsAt("object", storedOnly)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = doc
	return indexMapping
}

func (c *FilesystemClient) Close() error {
	return c.index.Close()
}

// Send indexes one activity. The object payload is kept only for object
// types listed in objectTypes.
func (c *FilesystemClient) Send(activity models.Activity) error {
	nanos, err := strconv.ParseInt(activity.Filter.Timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid activity timestamp %q: %w", activity.Filter.Timestamp, err)
	}

	fields := activity.Filter.Fields
	doc := document{
		Message:    activity.Message,
		Timestamp:  time.Unix(0, nanos).UTC(),
		Action:     fields["action"],
		ObjectType: fields["object_type"],
		UserID:     fields["user_id"],
		Email:      fields["email"],
		ClientIP:   fields["client_ip"],
		Reason:     fields["reason"],
	}

	if activity.Object != nil && isAuthorizedObject(doc.ObjectType) {
		payload, marshalErr := json.Marshal(activity.Object)
		if marshalErr != nil {
			return fmt.Errorf("failed to encode activity object: %w", marshalErr)
		}
		doc.Object = string(payload)
	}

	if err = c.index.Index(uuid.NewString(), doc); err != nil {
		return fmt.Errorf("failed to index activity: %w", err)
	}
	return nil
}

// Search returns the newest activities of the last thirty days matching
// every field of criteria; several values for one field are alternatives.
func (c *FilesystemClient) Search(criteria map[string][]string) ([]map[string]any, error) {
	now := time.Now()
	window := bleve.NewDateRangeQuery(now.Add(-searchWindow), now)
	window.SetField("timestamp")

	request := bleve.NewSearchRequest(bleve.NewConjunctionQuery(criteriaQuery(criteria), window))
	request.Size = searchLimit
	request.SortBy([]string{"-timestamp"})
	request.Fields = []string{"*"}

	result, err := c.index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("failed to search activity: %w", err)
	}

	activities := make([]map[string]any, 0, len(result.Hits))
	for _, hit := range result.Hits {
		activities = append(activities, toActivity(hit.Fields))
	}
	return activities, nil
}

func toActivity(fields map[string]any) map[string]any {
	out := map[string]any{}
	out["message"], _ = fields["message"].(string)
	for _, field := range keywordFields {
		out[field], _ = fields[field].(string)
	}

	if raw, ok := fields["timestamp"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			out["timestamp"] = strconv.FormatInt(ts.UnixNano(), 10)
		}
	}

	if raw, _ := fields["object"].(string); raw != "" {
		var object map[string]any
		if json.Unmarshal([]byte(raw), &object) == nil {
			out["object"] = object
		}
	}
	return out
}

func criteriaQuery(criteria map[string][]string) query.Query {
	clauses := make([]query.Query, 0, len(criteria))

	for field, values := range criteria {
		if len(values) == 0 {
			continue
		}
		alternatives := make([]query.Query, 0, len(values))
		for _, value := range values {
			term := bleve.NewTermQuery(value)
			term.SetField(field)
			alternatives = append(alternatives, term)
		}
		clauses = append(clauses, bleve.NewDisjunctionQuery(alternatives...))
	}

	if len(clauses) == 0 {
		return bleve.NewMatchAllQuery()
	}
	return bleve.NewConjunctionQuery(clauses...)
}
