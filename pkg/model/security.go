package model

import "sync/atomic"

// SecurityModel is a security requirement referenced by an operation.
// Implemented by *APIKeyModel, *HTTPModel, *OAuth2Model and *OpenIDDefinition.
type SecurityModel interface {
	securityRequirement()
}

// SecurityProvider is a security scheme declared on the application.
// Implemented by *APIKeyModel, *HTTPModel, the OAuth2 flow providers and
// *OpenIDProvider.
type SecurityProvider interface {
	securityProvider()
}

// SecurityGroups lists alternative requirement groups. Every requirement of one
// group applies together; any one group suffices.
type SecurityGroups [][]SecurityModel

// AllOf returns a single group requiring every member at once.
func AllOf(reqs ...SecurityModel) SecurityGroups {
	return SecurityGroups{append([]SecurityModel(nil), reqs...)}
}

// OneOf returns one group per member, so any single member suffices.
func OneOf(reqs ...SecurityModel) SecurityGroups {
	out := make(SecurityGroups, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, []SecurityModel{r})
	}
	return out
}

// APIKeyModel is both the provider and the requirement of an API key scheme.
type APIKeyModel struct {
	In          string
	Name        string
	Description string
}

// HTTPModel is both the provider and the requirement of an HTTP auth scheme.
type HTTPModel struct {
	Scheme       string
	BearerFormat string
	Description  string
}

// APIKey declares an API key read from in ("header", "query" or "cookie").
func APIKey(in, name string, opts ...Option) *APIKeyModel {
	return &APIKeyModel{In: in, Name: name, Description: collect(opts).meta.Description}
}

// HTTP declares an HTTP authentication scheme such as "basic" or "bearer".
func HTTP(scheme, bearerFormat string, opts ...Option) *HTTPModel {
	return &HTTPModel{Scheme: scheme, BearerFormat: bearerFormat, Description: collect(opts).meta.Description}
}

// OAuth2Definition owns the scope catalogue shared by its flow providers and
// the requirements created with Scope.
type OAuth2Definition struct {
	Scopes map[string]string
}

// OAuth2Model requires a subset of the scopes of an OAuth2Definition.
type OAuth2Model struct {
	Define *OAuth2Definition
	Scopes []string
}

// DefineOAuth2 declares an OAuth2 scope catalogue (scope name to description).
func DefineOAuth2(scopes map[string]string) *OAuth2Definition {
	return &OAuth2Definition{Scopes: scopes}
}

// Scope returns a requirement for the named scopes.
func (d *OAuth2Definition) Scope(names ...string) *OAuth2Model {
	return &OAuth2Model{Define: d, Scopes: append([]string(nil), names...)}
}

type AuthorizationCodeProvider struct {
	Define           *OAuth2Definition
	AuthorizationURL string
	TokenURL         string
	RefreshURL       string
	Description      string
}

type ClientCredentialsProvider struct {
	Define      *OAuth2Definition
	TokenURL    string
	Description string
}

type PasswordProvider struct {
	Define      *OAuth2Definition
	TokenURL    string
	RefreshURL  string
	Description string
}

// OpenIDDefinition is both an OpenID Connect requirement and the key its
// provider is matched by. Every definition carries its own handle: pointers to
// zero-size values may compare equal.
type OpenIDDefinition struct {
	handle uint64
}

var openIDHandles atomic.Uint64

// DefineOpenID declares an OpenID Connect requirement.
func DefineOpenID() *OpenIDDefinition {
	return &OpenIDDefinition{handle: openIDHandles.Add(1)}
}

type OpenIDProvider struct {
	Define           *OpenIDDefinition
	OpenIDConnectURL string
	Description      string
}

func (*APIKeyModel) securityRequirement() {}
func (*HTTPModel) securityRequirement() {}
func (*OAuth2Model) securityRequirement() {}
func (*OpenIDDefinition) securityRequirement() {}

func (*APIKeyModel) securityProvider() {}
func (*HTTPModel) securityProvider() {}
func (*AuthorizationCodeProvider) securityProvider() {}
func (*ClientCredentialsProvider) securityProvider() {}
func (*PasswordProvider) securityProvider() {}
func (*OpenIDProvider) securityProvider() {}

// OAuth2Define returns the scope catalogue behind an OAuth2 flow provider.
func OAuth2Define(p SecurityProvider) (*OAuth2Definition, bool) {
	switch p := p.(type) {
	case *AuthorizationCodeProvider:
		return p.Define, true
	case *ClientCredentialsProvider:
		return p.Define, true
	case *PasswordProvider:
		return p.Define, true
	}
	return nil, false
}
