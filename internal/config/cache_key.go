package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExerciseKey returns the key holding an exercise snapshot in the redis store.
func (r *CacheKeyStruct) ExerciseKey(exerciseID string) string {
	return fmt.Sprintf("exercise:%s", exerciseID)
}

var CacheKey = NewCacheKeyStruct()
