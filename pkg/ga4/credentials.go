package ga4

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Credential sources reported on resolved credentials.
const (
	CredentialSourceDocument = "document"
	CredentialSourceSplitEnv = "split_env"
)

// Config carries the analytics property identifier and credential material
// as loaded from the environment. Every field is optional at load time;
// resolution happens lazily on the first operation call.
type Config struct {
	// PropertyID is the numeric GA4 property identifier.
	PropertyID string

	// ProjectID optionally overrides the project id embedded in the
	// credentials document.
	ProjectID string

	// CredentialsJSON is a full service-account key document. When set it
	// takes precedence over the split email/key pair.
	CredentialsJSON string

	// ClientEmail and PrivateKey form the split credential pair.
	ClientEmail string
	PrivateKey  string
}

// Credentials is the resolved service-account identity used to
// authenticate Analytics Data API calls.
type Credentials struct {
	ClientEmail string
	PrivateKey  string
	ProjectID   string

	// Source records which configuration form produced the identity.
	Source string
}

// serviceAccountDocument is the subset of a service-account key file the
// resolver reads.
type serviceAccountDocument struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	PrivateKey  string `json:"private_key"`
	ClientEmail string `json:"client_email"`
}

// ResolveCredentials derives the service-account identity from the
// configuration. A full credentials document wins over the split
// email/key pair; the explicit project-id override wins over the
// document's embedded project id.
func (c Config) ResolveCredentials() (*Credentials, error) {
	if c.CredentialsJSON != "" {
		var doc serviceAccountDocument
		if err := json.Unmarshal([]byte(c.CredentialsJSON), &doc); err != nil {
			return nil, &ConfigError{Reason: fmt.Sprintf("malformed credentials document: %v", err)}
		}
		if doc.ClientEmail == "" {
			return nil, &ConfigError{Reason: "credentials document missing client_email"}
		}
		if doc.PrivateKey == "" {
			return nil, &ConfigError{Reason: "credentials document missing private_key"}
		}

		projectID := doc.ProjectID
		if c.ProjectID != "" {
			projectID = c.ProjectID
		}

		return &Credentials{
			ClientEmail: doc.ClientEmail,
			PrivateKey:  unescapeNewlines(doc.PrivateKey),
			ProjectID:   projectID,
			Source:      CredentialSourceDocument,
		}, nil
	}

	if c.ClientEmail != "" && c.PrivateKey != "" {
		return &Credentials{
			ClientEmail: c.ClientEmail,
			PrivateKey:  unescapeNewlines(c.PrivateKey),
			ProjectID:   c.ProjectID,
			Source:      CredentialSourceSplitEnv,
		}, nil
	}

	return nil, &ConfigError{Reason: "credentials not configured"}
}

// PropertyPath returns the API resource name of the configured property.
func (c Config) PropertyPath() (string, error) {
	if c.PropertyID == "" {
		return "", &ConfigError{Reason: "missing property id"}
	}
	return "properties/" + c.PropertyID, nil
}

// unescapeNewlines converts literal \n sequences to real newlines. Key
// material passed through environment variables commonly arrives with the
// escape intact. PEM content never contains a backslash, so the rewrite
// is a no-op on already-correct keys.
func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
