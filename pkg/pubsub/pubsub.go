package pubsub

// Pack is a single message on the bus. Key is used for partitioning.
type Pack struct {
	Key []byte
	Msg []byte
}
