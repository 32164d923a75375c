package imu

// Sample is a single linear-acceleration reading in m/s².
type Sample struct {
	Ax    float64 `json:"ax"`
	Ay    float64 `json:"ay"`
	Az    float64 `json:"az"`
	Nanos int64   `json:"t_ns"`
}

// Source is anything that can provide acceleration samples over time:
// hardware IMU, mock walker, replay from file.
type Source interface {
	Next() (Sample, error)
}
