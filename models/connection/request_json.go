package connection

// Used by place, can-place and attack requests
type ReqCoordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}
