package stringutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestContainsIgnoreCase(t *testing.T) {
	assert.True(t, ContainsIgnoreCase("Prod Neo4j Connection", "neo4j"))
	assert.True(t, ContainsIgnoreCase("prod-rds-credentials", "RDS"))
	assert.False(t, ContainsIgnoreCase("prod-rds-credentials", "neo4j"))
	assert.True(t, ContainsIgnoreCase("anything", ""))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "prod_neo4j", NormalizeName("Prod Neo4j"))
	assert.Equal(t, "cdk_admin_secret_123456789012", NormalizeName("cdk-admin-secret/123456789012"))
	assert.Equal(t, "brighthive_production_db", NormalizeName("BrightHive  Production -- DB"))
	assert.Equal(t, "a_b", NormalizeName("--a__b--"))
	assert.Equal(t, "", NormalizeName("///"))
	assert.Equal(t, "", NormalizeName(""))
}

func TestNormalizeName_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.String().Draw(t, "name")
		once := NormalizeName(name)
		assert.Equal(t, once, NormalizeName(once))
	})
}
