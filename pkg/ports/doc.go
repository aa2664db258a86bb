// Package ports declares the interfaces between the flume engine and
// its host: snapshot persistence and external change proposers. The
// engine core never performs I/O; adapters implement these contracts.
package ports
