package dynamo

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/campus-market-api/internal/domain"
)

// ItemRepo provides typed DynamoDB operations for the items table.
type ItemRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewItemRepo(client *dynamodb.Client, tableName string) *ItemRepo {
	return &ItemRepo{client: client, tableName: tableName}
}

func (r *ItemRepo) Put(ctx context.Context, it *domain.Item) error {
	item, err := attributevalue.MarshalMap(it)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ItemRepo) Get(ctx context.Context, itemID string) (*domain.Item, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("item_id", itemID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("item not found: %w", domain.ErrNotFound)
	}
	var it domain.Item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ItemRepo) Update(ctx context.Context, itemID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("item_id", itemID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *ItemRepo) Delete(ctx context.Context, itemID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("item_id", itemID),
	})
	return err
}

// ScanPage returns a page of items matching the filter.
// cursor is a base64-encoded item_id used as ExclusiveStartKey.
// Returns the items, a next cursor (empty string when no more pages), and any error.
func (r *ItemRepo) ScanPage(ctx context.Context, f domain.ItemFilter, limit int32, cursor string) ([]domain.Item, string, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Limit:     aws.Int32(limit),
	}
	if expr, names, values := buildItemFilter(f); expr != "" {
		input.FilterExpression = aws.String(expr)
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}
	if cursor != "" {
		itemID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = strKey("item_id", itemID)
	}
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var items []domain.Item
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["item_id"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return items, nextCursor, nil
}

// QueryBySeller returns a seller's items newest-first via the seller GSI.
func (r *ItemRepo) QueryBySeller(ctx context.Context, sellerID string, limit int32, cursor string) ([]domain.Item, string, error) {
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("seller_id-created_at-index"),
		KeyConditionExpression:    aws.String("#s = :v"),
		ExpressionAttributeNames:  map[string]string{"#s": "seller_id"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: sellerID}},
		ScanIndexForward:          aws.Bool(false), // newest first
		Limit:                     aws.Int32(limit),
	}
	if cursor != "" {
		key, err := decodeSellerCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = key
	}
	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var items []domain.Item
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if len(out.LastEvaluatedKey) > 0 {
		nextCursor = encodeSellerCursor(out.LastEvaluatedKey)
	}
	return items, nextCursor, nil
}

// buildItemFilter converts an ItemFilter into a DynamoDB filter expression.
// Sold items are always excluded; search matches title, description or tags
// via contains(); all other constraints are conjunctive.
func buildItemFilter(f domain.ItemFilter) (string, map[string]string, map[string]types.AttributeValue) {
	var clauses []string
	names := map[string]string{}
	values := map[string]types.AttributeValue{}

	names["#sold"] = "is_sold"
	values[":sold"] = &types.AttributeValueMemberBOOL{Value: false}
	clauses = append(clauses, "#sold = :sold")

	if f.Category != "" {
		names["#cat"] = "category"
		values[":cat"] = &types.AttributeValueMemberS{Value: f.Category}
		clauses = append(clauses, "#cat = :cat")
	}
	if f.Condition != "" {
		names["#cond"] = "condition"
		values[":cond"] = &types.AttributeValueMemberS{Value: f.Condition}
		clauses = append(clauses, "#cond = :cond")
	}
	if f.Location != "" {
		names["#loc"] = "location"
		values[":loc"] = &types.AttributeValueMemberS{Value: f.Location}
		clauses = append(clauses, "contains(#loc, :loc)")
	}
	if f.MinPrice != nil {
		names["#price"] = "price"
		values[":minp"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%g", *f.MinPrice)}
		clauses = append(clauses, "#price >= :minp")
	}
	if f.MaxPrice != nil {
		names["#price"] = "price"
		values[":maxp"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%g", *f.MaxPrice)}
		clauses = append(clauses, "#price <= :maxp")
	}
	if f.Search != "" {
		names["#title"] = "title"
		names["#desc"] = "description"
		names["#tags"] = "tags"
		values[":q"] = &types.AttributeValueMemberS{Value: f.Search}
		clauses = append(clauses, "(contains(#title, :q) OR contains(#desc, :q) OR contains(#tags, :q))")
	}
	return strings.Join(clauses, " AND "), names, values
}

func encodeCursor(itemID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(itemID))
}

func decodeCursor(cursor string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Seller-index pages carry a composite key (item_id + seller_id + created_at);
// the cursor packs all three, pipe-separated.
func encodeSellerCursor(key map[string]types.AttributeValue) string {
	parts := make([]string, 0, 3)
	for _, attr := range []string{"item_id", "seller_id", "created_at"} {
		if v, ok := key[attr].(*types.AttributeValueMemberS); ok {
			parts = append(parts, v.Value)
		} else {
			parts = append(parts, "")
		}
	}
	return base64.RawURLEncoding.EncodeToString([]byte(strings.Join(parts, "|")))
}

func decodeSellerCursor(cursor string) (map[string]types.AttributeValue, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(string(b), "|", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed cursor")
	}
	return map[string]types.AttributeValue{
		"item_id":    &types.AttributeValueMemberS{Value: parts[0]},
		"seller_id":  &types.AttributeValueMemberS{Value: parts[1]},
		"created_at": &types.AttributeValueMemberS{Value: parts[2]},
	}, nil
}
