package generator

import (
	"fmt"
	"regexp"

	"github.com/blimu-dev/specgen/pkg/model"
)

// untagged is the tag filters match operations without any tag against.
const untagged = "misc"

// FilterApplication keeps the operations whose tags pass the include and
// exclude patterns. An operation's tags are its route's tags plus its own.
// Routes left without operations are dropped. Standalone models are kept.
func FilterApplication(app *model.Application, includeTags, excludeTags []string) (*model.Application, error) {
	if len(includeTags) == 0 && len(excludeTags) == 0 {
		return app, nil
	}
	include, exclude, err := compileTagFilters(includeTags, excludeTags)
	if err != nil {
		return nil, err
	}

	filtered := make(map[*model.RoutesModel]*model.RoutesModel, len(app.Routes))
	for _, r := range app.Routes {
		var ops []model.NamedOperation
		for _, named := range r.Operations {
			if shouldIncludeOperation(operationTags(r, named.Operation), include, exclude) {
				ops = append(ops, named)
			}
		}
		if len(ops) > 0 {
			filtered[r] = r.WithOperations(ops)
		}
	}

	out := app.FilterRoutes(func(r *model.RoutesModel) bool { return filtered[r] != nil })
	for i, r := range out.Routes {
		out.Routes[i] = filtered[r]
	}
	return out, nil
}

func operationTags(r *model.RoutesModel, op *model.OperationModel) []string {
	tags := append(append([]string(nil), r.Tags...), op.Tags...)
	if len(tags) == 0 {
		return []string{untagged}
	}
	return tags
}

// compileTagFilters compiles regex patterns for tag filtering
func compileTagFilters(include, exclude []string) ([]*regexp.Regexp, []*regexp.Regexp, error) {
	inc := make([]*regexp.Regexp, 0, len(include))
	for _, p := range include {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid includeTags pattern %q: %w", p, err)
		}
		inc = append(inc, r)
	}
	exc := make([]*regexp.Regexp, 0, len(exclude))
	for _, p := range exclude {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid excludeTags pattern %q: %w", p, err)
		}
		exc = append(exc, r)
	}
	return inc, exc, nil
}

// shouldIncludeOperation reports whether an operation with tags passes the
// filters: any tag matching any include pattern admits it, any tag matching
// any exclude pattern rejects it.
func shouldIncludeOperation(tags []string, include, exclude []*regexp.Regexp) bool {
	included := len(include) == 0
	for _, tag := range tags {
		if included {
			break
		}
		for _, r := range include {
			if r.MatchString(tag) {
				included = true
				break
			}
		}
	}
	if !included {
		return false
	}

	for _, tag := range tags {
		for _, r := range exclude {
			if r.MatchString(tag) {
				return false
			}
		}
	}
	return true
}
