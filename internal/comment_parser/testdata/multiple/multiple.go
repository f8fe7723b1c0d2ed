package multiple

// @when `I add <count> apples`
// @bind count projection:count assigned:count
func AddApples(count int) {}
