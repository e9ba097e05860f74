// Package remote forwards mutation batches to browsers or other processes
// over WebSocket.
//
// A Hub is a runtime.Backend. Every delivered batch is JSON-encoded once
// and written to each connected client. A client that connects late first
// receives a reset batch describing the whole committed tree, then every
// later batch in sequence order. Clients send events back; the hub hands
// them to the runtime's event queue.
//
//	hub := remote.NewHub(remote.WithLogger(logger))
//	rt := runtime.New(hub)
//	hub.Attach(rt)
//
//	srv := &http.Server{Addr: ":8080", Handler: hub.Router()}
//
// # Wire Format
//
// All frames are JSON text messages.
//
// Server to client:
//
//	{"type":"batch","batch":{"seq":3,"mutations":[{"op":"SetText","h":7,"value":"1"}]}}
//	{"type":"error","error":"invalid frame"}
//
// Client to server:
//
//	{"type":"event","event":"click","target":7}
//	{"type":"event","event":"input","target":9,"payload":"hello"}
//	{"type":"resync"}
package remote
