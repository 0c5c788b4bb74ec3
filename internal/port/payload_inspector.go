package port

// PayloadInspector rejects payloads the remote service cannot process.
type PayloadInspector interface {
	Inspect(name string, payload []byte) error
}
