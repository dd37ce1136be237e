/*
Package ports defines the driven-side interfaces of the Espalier
simulator: where flow snapshots come from (FlowSource) and where run
snapshots go (RunStore). Adapters under pkg/adapters implement them;
RunStoreContract lets each adapter prove conformance in its own tests.
*/
package ports
