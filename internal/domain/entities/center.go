package entities

// Center represents a temporary evacuation center (PPS) with its static
// capability profile. Reference data: loaded once, shared read-only.
type Center struct {
	Name         string   `json:"name"`
	Location     Location `json:"location"`
	Capabilities []string `json:"capabilities"`
}

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HasCapability reports whether the center carries the given capability tag.
func (c Center) HasCapability(tag string) bool {
	for _, t := range c.Capabilities {
		if t == tag {
			return true
		}
	}
	return false
}

// HasCoordinates reports whether the center has usable coordinates. Centers
// without them are kept in the list but excluded from distance ranking.
func (c Center) HasCoordinates() bool {
	return c.Location.Latitude != 0 || c.Location.Longitude != 0
}
