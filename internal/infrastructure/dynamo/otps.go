package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/campus-market-api/internal/domain"
)

// OTPRepo manages pending email verification codes.
// PK: email. One record per email at most: Put replaces any prior record
// (last-write-wins), Consume deletes the record exactly once.
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

func (r *OTPRepo) Put(ctx context.Context, o *domain.EmailOTP) error {
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *OTPRepo) Get(ctx context.Context, email string) (*domain.EmailOTP, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	var o domain.EmailOTP
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Consume deletes the record for email, failing with domain.ErrNotFound when
// it is already gone. The conditional delete makes consumption atomic: two
// concurrent verifications of the same code succeed at most once.
func (r *OTPRepo) Consume(ctx context.Context, email string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("email", email),
		ConditionExpression: aws.String("attribute_exists(email)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("otp already consumed: %w", domain.ErrNotFound)
		}
		return err
	}
	return nil
}
