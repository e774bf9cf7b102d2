package statecheck

// A Harness builds and disposes (model, SUT) pairs for property runs. Every
// run, including shrink attempts, gets a fresh pair so no state leaks
// between runs.
type Harness[M, S any] struct {
	// Init builds a fresh system under test and a model whose contents
	// already match the system's bootstrap state. The two must agree before
	// any command runs.
	Init func() (M, S, error)

	// Teardown disposes of a system under test and releases any resources
	// it held. It is invoked after every run, including failed ones. May be
	// nil.
	Teardown func(S)
}
