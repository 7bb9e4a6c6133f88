// internal/repository/dynamo/plan_repo.go
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"opentrainer/plan-service/internal/config"
	"opentrainer/plan-service/internal/domain"
	"opentrainer/plan-service/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI exposes the subset of the DynamoDB client used by the repository.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// NewClient creates a DynamoDB client, honoring a custom endpoint for
// localstack-style deployments.
func NewClient(cfg config.DynamoDBConfig) (*dynamodb.Client, error) {
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           cfg.Endpoint,
				SigningRegion: cfg.Region,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(context.TODO(),
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsCfg.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		log.Printf("ERROR: Failed to load AWS SDK config for DynamoDB: %v", err)
		return nil, err
	}

	return dynamodb.NewFromConfig(awsSDKConfig), nil
}

// dynamoPlanRepository implements repository.PlanRepository on top of a
// DynamoDB table keyed userId (partition) / planId (sort).
type dynamoPlanRepository struct {
	api   DynamoAPI
	table string
}

// NewDynamoPlanRepository creates a new DynamoDB-backed plan repository.
func NewDynamoPlanRepository(api DynamoAPI, table string) repository.PlanRepository {
	return &dynamoPlanRepository{api: api, table: table}
}

// Put upserts the record, stamping UpdatedAt (and CreatedAt when absent).
func (r *dynamoPlanRepository) Put(ctx context.Context, record *domain.PlanRecord) error {
	if record.UserID == "" || record.PlanID == "" {
		return errors.New("plan record requires userId and planId")
	}
	now := time.Now().UTC()
	record.UpdatedAt = now
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshal plan record: %w", err)
	}

	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put plan record for user %s plan %s: %w", record.UserID, record.PlanID, err)
	}
	return nil
}

// GetByKey retrieves a single record by its composite key.
func (r *dynamoPlanRepository) GetByKey(ctx context.Context, userID, planID string) (*domain.PlanRecord, error) {
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: userID},
			"planId": &types.AttributeValueMemberS{Value: planID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get plan record for user %s plan %s: %w", userID, planID, err)
	}
	if len(out.Item) == 0 {
		return nil, repository.ErrNotFound
	}

	var record domain.PlanRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, fmt.Errorf("unmarshal plan record: %w", err)
	}
	return &record, nil
}

// QueryByUserID returns every record in the user's partition, newest first.
func (r *dynamoPlanRepository) QueryByUserID(ctx context.Context, userID string) ([]domain.PlanRecord, error) {
	out, err := r.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("userId = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query plan records for user %s: %w", userID, err)
	}

	var records []domain.PlanRecord
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
		return nil, fmt.Errorf("unmarshal plan records: %w", err)
	}
	// The sort key orders lexically; callers expect newest first.
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// DeleteByKey removes a record. Deleting a missing key is not an error in
// DynamoDB; that matches the administrative-cleanup semantics here.
func (r *dynamoPlanRepository) DeleteByKey(ctx context.Context, userID, planID string) error {
	_, err := r.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: userID},
			"planId": &types.AttributeValueMemberS{Value: planID},
		},
	})
	if err != nil {
		return fmt.Errorf("delete plan record for user %s plan %s: %w", userID, planID, err)
	}
	return nil
}
