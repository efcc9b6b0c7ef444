package dynamo

import (
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/campus-market-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildItemFilter_AlwaysExcludesSold(t *testing.T) {
	expr, names, values := buildItemFilter(domain.ItemFilter{})

	assert.Equal(t, "#sold = :sold", expr)
	assert.Equal(t, "is_sold", names["#sold"])
	sold, ok := values[":sold"].(*types.AttributeValueMemberBOOL)
	require.True(t, ok)
	assert.False(t, sold.Value)
}

func TestBuildItemFilter_ConjunctiveConstraints(t *testing.T) {
	min, max := 10.0, 50.0
	expr, names, values := buildItemFilter(domain.ItemFilter{
		Search:    "calculus",
		Category:  "Books",
		Condition: "Used",
		Location:  "North Campus",
		MinPrice:  &min,
		MaxPrice:  &max,
	})

	for _, clause := range []string{
		"#sold = :sold",
		"#cat = :cat",
		"#cond = :cond",
		"contains(#loc, :loc)",
		"#price >= :minp",
		"#price <= :maxp",
		"(contains(#title, :q) OR contains(#desc, :q) OR contains(#tags, :q))",
	} {
		assert.Contains(t, expr, clause)
	}
	assert.Equal(t, len(strings.Split(expr, " AND ")), 7)
	assert.Equal(t, "price", names["#price"])
	q, ok := values[":q"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "calculus", q.Value)
}

func TestCursor_RoundTrip(t *testing.T) {
	id := "01HZXKQJ8M2V0TJ4W5Y6B7C8D9"
	got, err := decodeCursor(encodeCursor(id))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = decodeCursor("not base64 ===")
	assert.Error(t, err)
}

func TestSellerCursor_RoundTrip(t *testing.T) {
	key := map[string]types.AttributeValue{
		"item_id":    &types.AttributeValueMemberS{Value: "i1"},
		"seller_id":  &types.AttributeValueMemberS{Value: "u1"},
		"created_at": &types.AttributeValueMemberS{Value: "2026-08-01T12:00:00Z"},
	}
	got, err := decodeSellerCursor(encodeSellerCursor(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestSellerCursor_Malformed(t *testing.T) {
	_, err := decodeSellerCursor("aW5jb21wbGV0ZQ")
	assert.Error(t, err)
}
