package vision

// Capture is one grayscale frame paired with the reference pose the
// external tracking subsystem computed for it.
type Capture struct {
	Frame Frame
	Ref   Reference
	Nanos int64
}
