package model

import (
	"net/url"
	"regexp"
	"strings"

	"secretsctl/internal/stringutil"
)

// Keyword tables for the ordered classification rules. AWS-credential
// patterns are checked first so a name like "cdk-admin-secret/123456789012"
// never falls through to the generic "db"-style substrings.
var (
	awsCredentialKeywords = []string{"cdk-admin", "access-key", "aws"}
	databaseKeywords      = []string{"rds", "neo4j", "redshift", "postgres", "database", "db"}
	apiKeyKeywords        = []string{"api-key", "api_key", "apikey"}

	// DefaultThirdPartyServices is the default table of known external
	// service names used by the third-party classification rule.
	DefaultThirdPartyServices = []string{
		"stripe", "sendgrid", "twilio", "datadog", "pagerduty",
		"github", "slack", "notion",
	}

	// A bare 12-digit run inside a secret name is almost always an AWS
	// account number.
	accountSegmentRe = regexp.MustCompile(`(^|[^0-9])[0-9]{12}([^0-9]|$)`)

	purposeRe = regexp.MustCompile(`(?mi)^\s*purpose:\s*(.+)$`)
)

type classificationRule struct {
	category Category
	matches  func(text string) bool
}

// Classifier assigns a Category to a secret's identifying text by evaluating
// an ordered rule table; the first rule that fires wins.
type Classifier struct {
	rules []classificationRule
}

// NewClassifier builds a classifier. A non-empty thirdPartyServices list
// replaces DefaultThirdPartyServices in the third-party rule.
func NewClassifier(thirdPartyServices ...string) *Classifier {
	services := thirdPartyServices
	if len(services) == 0 {
		services = DefaultThirdPartyServices
	}
	return &Classifier{
		rules: []classificationRule{
			{CategoryAWSCredential, func(text string) bool {
				return containsAny(text, awsCredentialKeywords) || accountSegmentRe.MatchString(text)
			}},
			{CategoryDatabase, func(text string) bool { return containsAny(text, databaseKeywords) }},
			{CategoryAPIKey, func(text string) bool { return containsAny(text, apiKeyKeywords) }},
			{CategoryThirdParty, func(text string) bool { return containsAny(text, services) }},
		},
	}
}

// Classify categorizes a secret from its name, url and grouping.
func (c *Classifier) Classify(name, rawURL, grouping string) Category {
	text := strings.ToLower(name + " " + rawURL + " " + grouping)
	for _, rule := range c.rules {
		if rule.matches(text) {
			return rule.category
		}
	}
	return CategoryUnknown
}

var defaultClassifier = NewClassifier()

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// environmentSignals is scanned in order; the first name substring match wins.
var environmentSignals = []struct {
	keyword string
	env     Environment
}{
	{"prod", EnvProd},
	{"staging", EnvStg},
	{"stg", EnvStg},
	{"dev", EnvDev},
}

// resolveEnvironment applies the priority rule: an explicit non-unknown
// environment always wins, otherwise the environment is inferred from the
// name.
func resolveEnvironment(explicit Environment, name string) Environment {
	if explicit != "" && explicit != EnvUnknown {
		return explicit
	}
	for _, signal := range environmentSignals {
		if stringutil.ContainsIgnoreCase(name, signal.keyword) {
			return signal.env
		}
	}
	return EnvUnknown
}

// extractPurpose captures the value of a "purpose: ..." line in the notes.
func extractPurpose(notes string) string {
	m := purposeRe.FindStringSubmatch(notes)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractInstance pulls the hostname out of a url, stripped of scheme and
// port. Schemeless values like "db.example.com:7687" are handled too.
func extractInstance(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err == nil && parsed.Hostname() != "" {
		return parsed.Hostname()
	}
	// No scheme: prepend one so the host parses.
	parsed, err = url.Parse("https://" + rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
