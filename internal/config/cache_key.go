package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a student's active login session.
func (r *CacheKeyStruct) UserSessionKey(userID string) string {
	return fmt.Sprintf("login:%s", userID)
}

// VariantPayloadKey returns the cache key for a variant's student-facing
// question payload (answer key stripped).
func (r *CacheKeyStruct) VariantPayloadKey(variantID string) string {
	return fmt.Sprintf("variant:%s:payload", variantID)
}

var CacheKey = NewCacheKeyStruct()
