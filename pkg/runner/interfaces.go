//go:generate mockgen -source=interfaces.go -destination=interfaces_mock.go -package=runner
package runner

import (
	"context"

	messages "github.com/cucumber/messages/go/v21"
)

type (
	FeatureParser interface {
		Search(directories []string) ([]string, error)
		ParseFiles(ctx context.Context, paths []string) ([]*messages.GherkinDocument, error)
	}
)
