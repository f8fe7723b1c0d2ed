package aliased

import c "github.com/cola-bdd/cola/pkg/cola"

func MoreHooks() *c.Hooks {
	return &c.Hooks{Order: 2}
}
