package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestMongoFilter(t *testing.T) {
	t.Parallel()

	assert.Empty(t, mongoFilter(Criteria{}))

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	got := mongoFilter(Criteria{
		ReferenceType: ReferenceAPI,
		ReferenceID:   "api-1",
		Actions:       []Action{APIKeyCreated},
		From:          from,
	})
	assert.Equal(t, bson.D{
		{Key: "reference_type", Value: ReferenceAPI},
		{Key: "reference_id", Value: "api-1"},
		{Key: "action", Value: bson.D{{Key: "$in", Value: []Action{APIKeyCreated}}}},
		{Key: "created_at", Value: bson.D{{Key: "$gte", Value: from}}},
	}, got)
}
