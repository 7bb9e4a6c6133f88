package dynamo

import (
	"context"
	"testing"
	"time"

	"opentrainer/plan-service/internal/domain"
	"opentrainer/plan-service/internal/repository"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

// stubDynamoAPI keeps items in memory, keyed userId + "/" + planId.
type stubDynamoAPI struct {
	items     map[string]map[string]types.AttributeValue
	lastTable string
}

func newStubDynamoAPI() *stubDynamoAPI {
	return &stubDynamoAPI{items: make(map[string]map[string]types.AttributeValue)}
}

func itemKey(item map[string]types.AttributeValue) string {
	userID := item["userId"].(*types.AttributeValueMemberS).Value
	planID := item["planId"].(*types.AttributeValueMemberS).Value
	return userID + "/" + planID
}

func (s *stubDynamoAPI) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	s.lastTable = *params.TableName
	s.items[itemKey(params.Item)] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (s *stubDynamoAPI) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	item, ok := s.items[itemKey(params.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (s *stubDynamoAPI) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	userID := params.ExpressionAttributeValues[":uid"].(*types.AttributeValueMemberS).Value
	var out []map[string]types.AttributeValue
	for _, item := range s.items {
		if item["userId"].(*types.AttributeValueMemberS).Value == userID {
			out = append(out, item)
		}
	}
	return &dynamodb.QueryOutput{Items: out}, nil
}

func (s *stubDynamoAPI) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	delete(s.items, itemKey(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestPutStampsTimestampsAndUpserts(t *testing.T) {
	api := newStubDynamoAPI()
	repo := NewDynamoPlanRepository(api, "training-metadata")

	record := domain.PlanRecord{
		UserID: "user123",
		PlanID: "PROCESSING-1",
		Title:  "Training Plan (Processing)",
		Status: domain.PlanStatusProcessing,
	}
	require.NoError(t, repo.Put(context.Background(), &record))

	require.Equal(t, "training-metadata", api.lastTable)
	require.False(t, record.CreatedAt.IsZero())
	require.False(t, record.UpdatedAt.IsZero())

	// A second Put keeps CreatedAt and advances UpdatedAt.
	created := record.CreatedAt
	time.Sleep(5 * time.Millisecond)
	record.Status = domain.PlanStatusError
	require.NoError(t, repo.Put(context.Background(), &record))
	require.Equal(t, created, record.CreatedAt)
	require.True(t, record.UpdatedAt.After(created))

	stored, err := repo.GetByKey(context.Background(), "user123", "PROCESSING-1")
	require.NoError(t, err)
	require.Equal(t, domain.PlanStatusError, stored.Status)
}

func TestPutRejectsMissingKeys(t *testing.T) {
	repo := NewDynamoPlanRepository(newStubDynamoAPI(), "training-metadata")

	err := repo.Put(context.Background(), &domain.PlanRecord{UserID: "user123"})
	require.Error(t, err)
}

func TestGetByKeyNotFound(t *testing.T) {
	repo := NewDynamoPlanRepository(newStubDynamoAPI(), "training-metadata")

	_, err := repo.GetByKey(context.Background(), "user123", "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestQueryByUserIDReturnsNewestFirst(t *testing.T) {
	api := newStubDynamoAPI()
	repo := NewDynamoPlanRepository(api, "training-metadata")

	older := domain.PlanRecord{UserID: "user123", PlanID: "plan-old", Status: domain.PlanStatusGenerated,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := domain.PlanRecord{UserID: "user123", PlanID: "plan-new", Status: domain.PlanStatusProcessing,
		CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}
	other := domain.PlanRecord{UserID: "user999", PlanID: "plan-x", Status: domain.PlanStatusGenerated}

	for _, r := range []*domain.PlanRecord{&older, &newer, &other} {
		item, err := attributevalue.MarshalMap(r)
		require.NoError(t, err)
		api.items[r.UserID+"/"+r.PlanID] = item
	}

	records, err := repo.QueryByUserID(context.Background(), "user123")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "plan-new", records[0].PlanID)
	require.Equal(t, "plan-old", records[1].PlanID)
}

func TestDeleteByKey(t *testing.T) {
	api := newStubDynamoAPI()
	repo := NewDynamoPlanRepository(api, "training-metadata")

	record := domain.PlanRecord{UserID: "user123", PlanID: "plan-1", Status: domain.PlanStatusGenerated}
	require.NoError(t, repo.Put(context.Background(), &record))

	require.NoError(t, repo.DeleteByKey(context.Background(), "user123", "plan-1"))
	_, err := repo.GetByKey(context.Background(), "user123", "plan-1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	// Deleting a missing key is not an error.
	require.NoError(t, repo.DeleteByKey(context.Background(), "user123", "plan-1"))
}
