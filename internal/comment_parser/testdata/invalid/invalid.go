package invalid

// @given `I have <count> apples`
// @bind amount assigned:count
func HaveApples(count int) {}
