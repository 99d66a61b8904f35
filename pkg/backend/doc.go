// Package backend defines the contract between the go-rados client layer and
// a storage backend driver.
//
// A driver exposes the cluster fabric through four opaque handle types:
//
//   - Interface: the driver itself; a factory for cluster session handles
//   - Cluster: one configured, possibly-connected session
//   - Pool: one open session scoped to a named pool
//   - Completion: one in-flight or finished asynchronous operation
//
// Every fallible call returns a Status: a signed integer where zero or a
// positive value means success (positive values carry an operation-specific
// count, such as bytes read) and a negative value encodes an errno-style
// error condition. Drivers never report expected failures through panics.
//
// Drivers included in this repository: memory (testing and development),
// s3 (Amazon S3 or compatible object storage) and badgerdb (embedded local
// storage).
package backend
