// Package ports defines the interfaces between the compiler core and its adapters.
//
// Ports:
//   - BundleStore: hash-keyed bundle cache (memory, file, redis)
//   - EventBus: compilation notifications (memory, redis streams)
//   - MetricsCollector: compilation metrics (prometheus)
//   - GraphBuilder: the external graph executor the assembler installs routers into
package ports
