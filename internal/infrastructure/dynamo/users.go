package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/campus-market-api/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("email-index"),
		KeyConditionExpression:    aws.String("#e = :v"),
		ExpressionAttributeNames:  map[string]string{"#e": "email"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: email}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("user_id", userID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// ClearRefreshToken removes the stored refresh token, ending the session.
func (r *UserRepo) ClearRefreshToken(ctx context.Context, userID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("user_id", userID),
		UpdateExpression:         aws.String("REMOVE #rt"),
		ExpressionAttributeNames: map[string]string{"#rt": "refresh_token"},
	})
	return err
}
