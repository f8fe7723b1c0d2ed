package basket

import "context"

// EmptyBasket resets the basket.
//
// @given `an empty basket`
func EmptyBasket() {}

// @when `I add <count> <item>`
// @bind count assigned:count
// @bind item assigned:item
func AddItems(ctx context.Context, count int, item string) context.Context {
	return ctx
}

// @when `I add <count> <item> from the list`
// @bind count projection:count
// @bind item projection:item
func AddListed(count int, item string) {}

// @then `^the basket holds (\d+) items$`
// @bind total group:1
func BasketHolds(total int) error {
	return nil
}

// @given `I have <count> items`
// @then `I still have <count> items`
// @bind count assigned:count
func HaveItems(count int) {}

// @step `anything happens`
func Anything() {}

// helper is not a step.
func helper() {}
