package openapi

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/specgen/pkg/graph"
	"github.com/blimu-dev/specgen/pkg/model"
)

// security turns requirement groups into security requirement objects.
// Requirements without a declared scheme are dropped with a warning; a group
// left empty is dropped as well, since an empty object would mean anonymous
// access.
func (b *builder) security(groups model.SecurityGroups, where string) []any {
	var out []any
	for _, group := range groups {
		req := map[string]any{}
		for _, s := range group {
			name, scopes, ok := resolveRequirement(b.app.Securities, s)
			if !ok {
				b.warnings.Add(graph.WarnSecurityNotFound, where,
					fmt.Sprintf("%s: %T requirement has no matching scheme", model.ErrSecurityNotFound, s))
				continue
			}
			if existing, ok := req[name].([]any); ok {
				req[name] = unionAny(existing, scopes)
				continue
			}
			req[name] = scopes
		}
		if len(req) > 0 {
			out = append(out, req)
		}
	}
	return out
}

func resolveRequirement(schemes []model.SecurityScheme, req model.SecurityModel) (string, []any, bool) {
	for _, s := range schemes {
		switch r := req.(type) {
		case *model.APIKeyModel:
			if p, ok := s.Provider.(*model.APIKeyModel); ok && p == r {
				return s.Name, []any{}, true
			}
		case *model.HTTPModel:
			if p, ok := s.Provider.(*model.HTTPModel); ok && p == r {
				return s.Name, []any{}, true
			}
		case *model.OAuth2Model:
			if d, ok := model.OAuth2Define(s.Provider); ok && d == r.Define {
				scopes := make([]any, 0, len(r.Scopes))
				for _, sc := range r.Scopes {
					scopes = append(scopes, sc)
				}
				return s.Name, scopes, true
			}
		case *model.OpenIDDefinition:
			if p, ok := s.Provider.(*model.OpenIDProvider); ok && p.Define == r {
				return s.Name, []any{}, true
			}
		}
	}
	return "", nil, false
}

func unionAny(a, b []any) []any {
	out := append([]any(nil), a...)
	for _, v := range b {
		if !containsDeep(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// securitySchemes renders components.securitySchemes.
func securitySchemes(schemes []model.SecurityScheme) (map[string]*openapi3.SecurityScheme, error) {
	if len(schemes) == 0 {
		return nil, nil
	}
	out := make(map[string]*openapi3.SecurityScheme, len(schemes))
	for _, s := range schemes {
		if _, dup := out[s.Name]; dup {
			return nil, fmt.Errorf("%w: security scheme %q declared twice", model.ErrDuplicateID, s.Name)
		}
		scheme, err := securityScheme(s.Provider)
		if err != nil {
			return nil, fmt.Errorf("security scheme %s: %w", s.Name, err)
		}
		out[s.Name] = scheme
	}
	return out, nil
}

func securityScheme(p model.SecurityProvider) (*openapi3.SecurityScheme, error) {
	switch p := p.(type) {
	case *model.APIKeyModel:
		return &openapi3.SecurityScheme{Type: "apiKey", In: p.In, Name: p.Name, Description: p.Description}, nil
	case *model.HTTPModel:
		return &openapi3.SecurityScheme{Type: "http", Scheme: p.Scheme, BearerFormat: p.BearerFormat, Description: p.Description}, nil
	case *model.AuthorizationCodeProvider:
		return &openapi3.SecurityScheme{
			Type:        "oauth2",
			Description: p.Description,
			Flows: &openapi3.OAuthFlows{AuthorizationCode: &openapi3.OAuthFlow{
				AuthorizationURL: p.AuthorizationURL,
				TokenURL:         p.TokenURL,
				RefreshURL:       p.RefreshURL,
				Scopes:           scopes(p.Define),
			}},
		}, nil
	case *model.ClientCredentialsProvider:
		return &openapi3.SecurityScheme{
			Type:        "oauth2",
			Description: p.Description,
			Flows: &openapi3.OAuthFlows{ClientCredentials: &openapi3.OAuthFlow{
				TokenURL: p.TokenURL,
				Scopes:   scopes(p.Define),
			}},
		}, nil
	case *model.PasswordProvider:
		return &openapi3.SecurityScheme{
			Type:        "oauth2",
			Description: p.Description,
			Flows: &openapi3.OAuthFlows{Password: &openapi3.OAuthFlow{
				TokenURL:   p.TokenURL,
				RefreshURL: p.RefreshURL,
				Scopes:     scopes(p.Define),
			}},
		}, nil
	case *model.OpenIDProvider:
		return &openapi3.SecurityScheme{Type: "openIdConnect", OpenIdConnectUrl: p.OpenIDConnectURL, Description: p.Description}, nil
	}
	return nil, fmt.Errorf("%w: security provider %T", model.ErrUnknownModelKind, p)
}

func scopes(d *model.OAuth2Definition) openapi3.StringMap {
	out := make(openapi3.StringMap)
	if d == nil {
		return out
	}
	for k, v := range d.Scopes {
		out[k] = v
	}
	return out
}
