package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secretsctl/internal/model"
)

func makeSecret(t *testing.T, id, name string, opts ...func(*model.Input)) *model.Secret {
	t.Helper()
	in := model.Input{
		ID:          id,
		Name:        name,
		Environment: model.EnvProd,
		Source:      model.SourceSecretsManager,
	}
	for _, opt := range opts {
		opt(&in)
	}
	s, err := model.New(in)
	require.NoError(t, err)
	return s
}

func withEnv(env model.Environment) func(*model.Input) {
	return func(in *model.Input) { in.Environment = env }
}

func withCredentials(username, password string) func(*model.Input) {
	return func(in *model.Input) {
		in.Username = username
		in.Password = password
		in.Source = model.SourceLastPass
	}
}

func TestFindDuplicates_SameNameCrossEnv(t *testing.T) {
	a := New(nil)

	s1 := makeSecret(t, "arn:1", "neo4j-connection", withEnv(model.EnvProd))
	s2 := makeSecret(t, "arn:2", "neo4j-connection", withEnv(model.EnvDev))

	matches := a.FindDuplicates([]*model.Secret{s1, s2})

	require.Len(t, matches, 1)
	assert.Equal(t, 1.0, matches[0].Confidence)
	assert.Contains(t, matches[0].Reason, "envs")
}

func TestFindDuplicates_IdenticalCredentials(t *testing.T) {
	a := New(nil)

	s1 := makeSecret(t, "1", "AWS Prod", withCredentials("admin", "same_password"))
	s2 := makeSecret(t, "2", "AWS Prod Copy", withCredentials("admin", "same_password"))

	matches := a.FindDuplicates([]*model.Secret{s1, s2})

	require.Len(t, matches, 1)
	assert.Equal(t, 1.0, matches[0].Confidence)
	assert.Contains(t, matches[0].Reason, "Identical credentials")
}

func TestFindDuplicates_IdenticalValueCredentials(t *testing.T) {
	a := New(nil)

	value := func() map[string]interface{} {
		return map[string]interface{}{"username": "svc", "password": "hunter2"}
	}
	s1 := makeSecret(t, "arn:1", "platform-service-login", func(in *model.Input) {
		in.SecretValue = value()
	})
	s2 := makeSecret(t, "arn:2", "svc-login-copy", func(in *model.Input) {
		in.SecretValue = value()
		in.Source = model.SourceDynamoDBCrossRef
	})

	matches := a.FindDuplicates([]*model.Secret{s1, s2})

	require.Len(t, matches, 1)
	assert.Equal(t, 1.0, matches[0].Confidence)
	assert.Contains(t, matches[0].Reason, "Identical credentials")
}

func TestFindDuplicates_SameAccountDifferentSource(t *testing.T) {
	a := New(nil)

	s1 := makeSecret(t, "arn:1", "cdk-admin-secret/123", func(in *model.Input) {
		in.AccountNumber = "123"
	})
	s2 := makeSecret(t, "arn:2", "account-123-creds", func(in *model.Input) {
		in.AccountNumber = "123"
		in.Source = model.SourceDynamoDBCrossRef
	})

	matches := a.FindDuplicates([]*model.Secret{s1, s2})

	require.Len(t, matches, 1)
	assert.Equal(t, 0.95, matches[0].Confidence)
	assert.Contains(t, matches[0].Reason, "123")
}

func TestFindDuplicates_SameAccountSameSourceNotReported(t *testing.T) {
	a := New(nil)

	s1 := makeSecret(t, "arn:1", "cdk-admin-secret/123", func(in *model.Input) {
		in.AccountNumber = "123"
	})
	s2 := makeSecret(t, "arn:2", "account-123-creds", func(in *model.Input) {
		in.AccountNumber = "123"
	})

	assert.Empty(t, a.FindDuplicates([]*model.Secret{s1, s2}))
}

func TestFindDuplicates_SimilarNames(t *testing.T) {
	a := New(nil)

	s1 := makeSecret(t, "arn:1", "brighthive-prod-database")
	s2 := makeSecret(t, "arn:2", "brighthive-prod-database-v2")

	matches := a.FindDuplicates([]*model.Secret{s1, s2})

	require.NotEmpty(t, matches)
	assert.GreaterOrEqual(t, matches[0].Confidence, 0.85)
	assert.Contains(t, matches[0].Reason, "similar names")
}

func TestFindDuplicates_SimilarNamesVaultStyle(t *testing.T) {
	a := New(nil)

	s1 := makeSecret(t, "3", "BrightHive Production Database", withCredentials("user1", "pass1"))
	s2 := makeSecret(t, "4", "BrightHive Production DB", withCredentials("user2", "pass2"))

	matches := a.FindDuplicates([]*model.Secret{s1, s2})

	require.Len(t, matches, 1)
	assert.Greater(t, matches[0].Confidence, 0.85)
}

func TestFindDuplicates_NoFalsePositives(t *testing.T) {
	a := New(nil)

	s1 := makeSecret(t, "arn:1", "neo4j-connection")
	s2 := makeSecret(t, "arn:2", "stripe-api-key")

	assert.Empty(t, a.FindDuplicates([]*model.Secret{s1, s2}))
}

func TestFindDuplicates_LowSimilarityNamesNotReported(t *testing.T) {
	a := New(nil)

	s1 := makeSecret(t, "5", "AWS Account", withCredentials("admin", "pass1"))
	s2 := makeSecret(t, "6", "GCP Account", withCredentials("user", "pass2"))

	assert.Empty(t, a.FindDuplicates([]*model.Secret{s1, s2}))
}

func TestFindDuplicates_HighestPriorityHeuristicWins(t *testing.T) {
	a := New(nil)

	// Identical names across envs AND shared account: the 1.0 cross-env
	// signal must win over the 0.95 account signal.
	s1 := makeSecret(t, "arn:1", "cdk-admin-secret/111", withEnv(model.EnvProd), func(in *model.Input) {
		in.AccountNumber = "111"
	})
	s2 := makeSecret(t, "arn:2", "cdk-admin-secret/111", withEnv(model.EnvDev), func(in *model.Input) {
		in.AccountNumber = "111"
		in.Source = model.SourceDynamoDBCrossRef
	})

	matches := a.FindDuplicates([]*model.Secret{s1, s2})

	require.Len(t, matches, 1)
	assert.Equal(t, 1.0, matches[0].Confidence)
}

func TestFindDuplicates_DeterministicAcrossInputOrder(t *testing.T) {
	a := New(nil)

	s1 := makeSecret(t, "arn:1", "brighthive-prod-database")
	s2 := makeSecret(t, "arn:2", "brighthive-prod-database-v2")
	s3 := makeSecret(t, "arn:3", "neo4j-connection", withEnv(model.EnvDev))
	s4 := makeSecret(t, "arn:4", "neo4j-connection", withEnv(model.EnvProd))

	forward := a.FindDuplicates([]*model.Secret{s1, s2, s3, s4})
	backward := a.FindDuplicates([]*model.Secret{s4, s3, s2, s1})

	assert.Equal(t, forward, backward)
}

func TestFindDuplicates_NeverSelfOrRepeatedPairs(t *testing.T) {
	a := New(nil)

	s1 := makeSecret(t, "arn:1", "neo4j-connection", withEnv(model.EnvProd))
	s2 := makeSecret(t, "arn:2", "neo4j-connection", withEnv(model.EnvDev))

	matches := a.FindDuplicates([]*model.Secret{s1, s2, s1})

	require.Len(t, matches, 1)
	assert.NotEqual(t, matches[0].SecretAID, matches[0].SecretBID)
}

func TestFindDuplicates_CustomCredentialMatcher(t *testing.T) {
	never := func(_, _ *model.Secret) bool { return false }
	a := New(nil, WithCredentialMatcher(never))

	s1 := makeSecret(t, "1", "AWS Prod", withCredentials("admin", "same_password"))
	s2 := makeSecret(t, "2", "Completely Different", withCredentials("admin", "same_password"))

	assert.Empty(t, a.FindDuplicates([]*model.Secret{s1, s2}))
}

func TestCrossEnvironment(t *testing.T) {
	a := New(nil)

	s1 := makeSecret(t, "arn:1", "neo4j-connection", withEnv(model.EnvProd))
	s2 := makeSecret(t, "arn:2", "neo4j-connection", withEnv(model.EnvDev))
	s3 := makeSecret(t, "arn:3", "stripe-api-key", withEnv(model.EnvProd))

	groups := a.CrossEnvironment([]*model.Secret{s1, s2, s3})

	require.Len(t, groups, 1)
	assert.Equal(t, "neo4j_connection", groups[0].NormalizedName)
	assert.Equal(t, []string{"dev", "prod"}, groups[0].Environments)
	assert.Len(t, groups[0].Secrets, 2)
}
