package floatmap

type Stats struct {
	Size           int
	Capacity       int
	Threshold      int
	StashSize      int
	StashCapacity  int
	PushIterations int
}
