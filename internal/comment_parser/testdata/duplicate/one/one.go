package one

// @given `step 1`
func Step1() {}
