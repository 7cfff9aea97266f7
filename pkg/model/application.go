package model

// Tag documents an OpenAPI tag.
type Tag struct {
	Name        string
	Description string
}

// SecurityScheme names a security provider. The name becomes the key under
// components.securitySchemes.
type SecurityScheme struct {
	Name     string
	Provider SecurityProvider
}

// Application is the root set handed to generators: the routes, the standalone
// models that must be emitted even when no route reaches them, extra tags and
// the declared security schemes.
type Application struct {
	Routes     []*RoutesModel
	Models     []Model
	Tags       []Tag
	Securities []SecurityScheme
}

// NewApplication returns an application rooted at routes.
func NewApplication(routes ...*RoutesModel) *Application {
	return &Application{Routes: routes}
}

// WithModels appends standalone models to a and returns it.
func (a *Application) WithModels(models ...Model) *Application {
	a.Models = append(a.Models, models...)
	return a
}

// FilterRoutes returns a shallow copy of a keeping only the routes for which
// keep returns true.
func (a *Application) FilterRoutes(keep func(*RoutesModel) bool) *Application {
	out := *a
	out.Routes = nil
	for _, r := range a.Routes {
		if keep(r) {
			out.Routes = append(out.Routes, r)
		}
	}
	return &out
}
