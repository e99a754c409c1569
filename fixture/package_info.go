// Package fixture contains the lifecycle of a test fixture and the API that its tests use to
// call the service under test.
//
// A fixture is set up once, when the first of its tests that the filter lets through starts: it
// initializes its call counters and then calls
// its bootstrap hooks in a fixed order (tyr, additional services, data loading, krakens,
// jormungandr). Its tests call T.API for each request; every response is saved by the snapshot
// package and then compared with its reference. The fixture is torn down after its tests.
package fixture
