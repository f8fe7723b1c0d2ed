package binding

// MethodDetails is the resolved binding of one step to one step method.
// It is never modified after Build returns it.
type MethodDetails struct {
	step        string
	method      Method
	projections []string
	arguments   []any
}

// Step returns the step kind followed by the step text.
func (d *MethodDetails) Step() string {
	return d.step
}

// Method returns the bound step method.
func (d *MethodDetails) Method() Method {
	return d.method
}

// HasProjections reports whether the step text referenced any <name>
// placeholder.
func (d *MethodDetails) HasProjections() bool {
	return len(d.projections) > 0
}

// Projections returns the placeholder names of the step text in order.
func (d *MethodDetails) Projections() []string {
	projections := make([]string, len(d.projections))
	copy(projections, d.projections)
	return projections
}

// Arguments returns one value per method parameter. Unresolved parameters
// are nil.
func (d *MethodDetails) Arguments() []any {
	args := make([]any, len(d.arguments))
	copy(args, d.arguments)
	return args
}
