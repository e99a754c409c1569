// Package framework contains the low-level test runner used by the fixtures. It is not
// specific to any particular service.
//
// The general model is:
//
// 1. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a hierarchical test identifier and to
// accumulate success/failure results.
//
// 2. Each test context captures its own debug output, which is only shown by the console
// logger if the test fails (or if all debug output was requested).
//
// 3. The APIClient performs HTTP calls against the service under test and decodes the JSON
// responses.
//
// The domain-specific code that knows what is being tested, and how responses are recorded,
// is in the higher-level fixture and snapshot packages.
package framework
