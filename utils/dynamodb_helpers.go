package utils

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Key builds a single-attribute string partition key
func Key(field, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		field: &types.AttributeValueMemberS{Value: value},
	}
}

// CompositeKey builds a string partition key plus string sort key
func CompositeKey(pkField, pkValue, skField, skValue string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		pkField: &types.AttributeValueMemberS{Value: pkValue},
		skField: &types.AttributeValueMemberS{Value: skValue},
	}
}
