package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReflectionStale(t *testing.T) {
	r := Reflection{SchemaVersionObserved: "v1"}

	assert.False(t, r.Stale("v1"), "same version is fresh")
	assert.True(t, r.Stale("v2"), "newer version is stale")
	assert.False(t, r.Stale(""), "unknown current version never marks stale")
}
