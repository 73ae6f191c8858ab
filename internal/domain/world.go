package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// Coordinates is a village position on the world map (1-999 per axis).
type Coordinates struct {
	X int
	Y int
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%d|%d", c.X, c.Y)
}

func (c Coordinates) Valid() bool {
	return c.X >= 1 && c.X <= 999 && c.Y >= 1 && c.Y <= 999
}

// Continent returns the K-sector the coordinates fall into, e.g. K55 for 512|534.
func (c Coordinates) Continent() string {
	return fmt.Sprintf("K%d%d", c.Y/100, c.X/100)
}

var coordsPattern = regexp.MustCompile(`^(\d{1,3})\|(\d{1,3})$`)

// ParseCoordinates parses the canonical "x|y" form.
func ParseCoordinates(s string) (Coordinates, bool) {
	m := coordsPattern.FindStringSubmatch(s)
	if m == nil {
		return Coordinates{}, false
	}
	x, _ := strconv.Atoi(m[1])
	y, _ := strconv.Atoi(m[2])
	c := Coordinates{X: x, Y: y}
	return c, c.Valid()
}

// Player is one row of the map/player.txt roster feed.
type Player struct {
	ID       int
	Name     string
	TribeID  int
	Villages int
	Points   int
	Rank     int
}

// Tribe is one row of the map/ally.txt roster feed.
type Tribe struct {
	ID        int
	Name      string
	Tag       string
	Members   int
	Villages  int
	Points    int
	AllPoints int
	Rank      int
}

// Village is one row of the map/village.txt roster feed. PlayerID 0 marks a
// barbarian village.
type Village struct {
	ID       int
	Name     string
	Coords   Coordinates
	PlayerID int
	Points   int
	Rank     int
}

func (v *Village) IsBarbarian() bool {
	return v.PlayerID == 0
}
