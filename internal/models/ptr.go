package models

// Bool returns a pointer to b. Optional assessment fields are pointers so
// "not answered" is distinguishable from a false/zero answer.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to n.
func Int(n int) *int { return &n }
