// Package snapshot names and records the responses of API calls made by fixture tests.
//
// Every recorded call gets an Identity of the form
//
//	{fixture}/{test function}_{md5 of the URL}[_{n}].json
//
// which is stable from one run to the next, so that a recorded response can be compared with
// the reference response recorded under the same name. When a test function makes the same
// call more than once, the repeats are told apart by a suffix: the first call has none, the
// second gets _2, the third _3, and so on.
package snapshot
