package flume

// Version is the library release, surfaced by the CLI and the MCP
// server handshake.
const Version = "0.1.0"
