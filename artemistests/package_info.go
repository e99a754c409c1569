// Package artemistests contains the fixtures of the integration test suite and the runner that
// sets each of them up, runs its tests, and tears it down.
//
// Infrastructure that does not depend on what the tests contain, such as the lifecycle of a
// fixture and the recording of responses, is in the lower-level fixture and snapshot packages.
package artemistests
