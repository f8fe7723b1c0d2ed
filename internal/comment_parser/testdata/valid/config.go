package valid

import "github.com/cola-bdd/cola/pkg/cola"

func Config() *cola.Config {
	return &cola.Config{FailFast: true}
}

func Hooks() *cola.Hooks {
	return &cola.Hooks{Order: 1}
}

type Settings struct{}

// @given `a settings helper`
func (s *Settings) Method() {}

func LocalSettings() *Settings {
	return nil
}
