package two

// @given `step 1`
func AnotherStep1() {}
