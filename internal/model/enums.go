package model

// Category classifies what kind of credential a secret holds.
type Category string

const (
	CategoryAWSCredential Category = "aws_credential"
	CategoryDatabase      Category = "database"
	CategoryAPIKey        Category = "api_key"
	CategoryThirdParty    Category = "third_party"
	CategoryUnknown       Category = "unknown"
)

// ParseCategory maps a stored category label to a Category. The vault export
// format used "aws" for AWS credentials; it is accepted as an alias.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryAWSCredential, CategoryDatabase, CategoryAPIKey, CategoryThirdParty, CategoryUnknown:
		return Category(s), true
	}
	if s == "aws" {
		return CategoryAWSCredential, true
	}
	return CategoryUnknown, false
}

// Environment identifies which deployment environment a secret belongs to.
type Environment string

const (
	EnvProd    Environment = "prod"
	EnvStg     Environment = "stg"
	EnvDev     Environment = "dev"
	EnvUnknown Environment = "unknown"
)

// ParseEnvironment maps a stored environment label to an Environment.
func ParseEnvironment(s string) (Environment, bool) {
	switch Environment(s) {
	case EnvProd, EnvStg, EnvDev, EnvUnknown:
		return Environment(s), true
	}
	return EnvUnknown, false
}

// Source records which discovery path produced a secret. It is always
// supplied by the caller, never inferred.
type Source string

const (
	SourceSecretsManager   Source = "secrets_manager"
	SourceDynamoDBCrossRef Source = "dynamodb_cross_ref"
	SourceLastPass         Source = "lastpass"
	SourceBackupCLI        Source = "backup_cli"
	SourceUnknown          Source = "unknown"
)

// ParseSource maps a stored source label to a Source.
func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceSecretsManager, SourceDynamoDBCrossRef, SourceLastPass, SourceBackupCLI, SourceUnknown:
		return Source(s), true
	}
	return SourceUnknown, false
}

// Status tracks whether a secret is still considered live.
type Status string

const (
	StatusActive     Status = "active"
	StatusDeprecated Status = "deprecated"
)

// ParseStatus maps a stored status label to a Status.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusActive, StatusDeprecated:
		return Status(s), true
	}
	return StatusActive, false
}
