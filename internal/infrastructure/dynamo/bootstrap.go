package dynamo

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/campus-market-api/internal/config"
	"github.com/rs/zerolog"
)

// Bootstrap creates all DynamoDB tables and GSIs if they don't already exist.
// Safe to call on every startup; tables that already exist are skipped.
func Bootstrap(ctx context.Context, client *dynamodb.Client, tables config.DynamoTables, log zerolog.Logger) {
	createTable(ctx, client, log, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Users),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("user_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("email"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("user_id"), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi("email-index", "email", ""),
		},
	})

	createTable(ctx, client, log, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.EmailOTPs),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("email"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("email"), KeyType: types.KeyTypeHash},
		},
	})
	enableTTL(ctx, client, log, tables.EmailOTPs, "expires_at")

	createTable(ctx, client, log, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Items),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("item_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("seller_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("created_at"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("item_id"), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi("seller_id-created_at-index", "seller_id", "created_at"),
		},
	})
}

// gsi builds a GSI descriptor. If sortKey is empty, only a hash key is added.
func gsi(indexName, hashKey, sortKey string) types.GlobalSecondaryIndex {
	ks := []types.KeySchemaElement{
		{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
	}
	if sortKey != "" {
		ks = append(ks, types.KeySchemaElement{
			AttributeName: aws.String(sortKey), KeyType: types.KeyTypeRange,
		})
	}
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(indexName),
		KeySchema:  ks,
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

func createTable(ctx context.Context, client *dynamodb.Client, log zerolog.Logger, input *dynamodb.CreateTableInput) {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		// ResourceInUseException means the table already exists.
		var riue *types.ResourceInUseException
		if !errors.As(err, &riue) {
			log.Warn().Str("table", *input.TableName).Err(err).Msg("could not create table")
		}
	} else {
		log.Info().Str("table", *input.TableName).Msg("created table")
	}
}

func enableTTL(ctx context.Context, client *dynamodb.Client, log zerolog.Logger, tableName, ttlAttr string) {
	_, err := client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String(ttlAttr),
		},
	})
	if err != nil {
		log.Warn().Str("table", tableName).Err(err).Msg("could not enable TTL")
	}
}
