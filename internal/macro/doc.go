// Package macro implements the macro command execution engine.
//
// A macro is a Tree of command nodes. Leaf commands call one collaborator
// (mouse, keyboard, image search, AI detection, process launcher, screen
// capture, variable store) through the ExecContext, while container commands
// (Loop and the If family) decide whether and how often their children run.
//
// Every Execute returns (bool, error). false is a stop signal: cancellation,
// an expired poll or a LoopBreak. A non-nil error is a configuration error
// and aborts the run. Loop absorbs a child's false and completes; an If node
// passes it on to its parent.
package macro
