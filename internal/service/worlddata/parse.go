package worlddata

import (
	"strconv"
	"strings"

	"github.com/marcosgv/tribalbot/internal/domain"
	"github.com/marcosgv/tribalbot/internal/util"
)

// Roster feeds are comma-separated lines with fixed column counts:
//
//	player.txt:  id,name,ally,villages,points,rank
//	ally.txt:    id,name,tag,members,villages,points,all_points,rank
//	village.txt: id,name,x,y,player,points,rank
//
// Names are percent-encoded with '+' for spaces. Malformed lines are skipped
// by the caller; these parsers report them with ok=false.

func parsePlayerLine(line string) (domain.Player, bool) {
	fields := strings.Split(line, ",")
	if len(fields) != 6 {
		return domain.Player{}, false
	}

	id, err1 := strconv.Atoi(fields[0])
	tribeID, err2 := strconv.Atoi(fields[2])
	villages, err3 := strconv.Atoi(fields[3])
	points, err4 := strconv.Atoi(fields[4])
	rank, err5 := strconv.Atoi(fields[5])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return domain.Player{}, false
	}

	return domain.Player{
		ID:       id,
		Name:     util.DecodeFeedName(fields[1]),
		TribeID:  tribeID,
		Villages: villages,
		Points:   points,
		Rank:     rank,
	}, true
}

func parseTribeLine(line string) (domain.Tribe, bool) {
	fields := strings.Split(line, ",")
	if len(fields) != 8 {
		return domain.Tribe{}, false
	}

	id, err1 := strconv.Atoi(fields[0])
	members, err2 := strconv.Atoi(fields[3])
	villages, err3 := strconv.Atoi(fields[4])
	points, err4 := strconv.Atoi(fields[5])
	allPoints, err5 := strconv.Atoi(fields[6])
	rank, err6 := strconv.Atoi(fields[7])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
		return domain.Tribe{}, false
	}

	return domain.Tribe{
		ID:        id,
		Name:      util.DecodeFeedName(fields[1]),
		Tag:       util.DecodeFeedName(fields[2]),
		Members:   members,
		Villages:  villages,
		Points:    points,
		AllPoints: allPoints,
		Rank:      rank,
	}, true
}

func parseVillageLine(line string) (domain.Village, bool) {
	fields := strings.Split(line, ",")
	if len(fields) != 7 {
		return domain.Village{}, false
	}

	id, err1 := strconv.Atoi(fields[0])
	x, err2 := strconv.Atoi(fields[2])
	y, err3 := strconv.Atoi(fields[3])
	playerID, err4 := strconv.Atoi(fields[4])
	points, err5 := strconv.Atoi(fields[5])
	rank, err6 := strconv.Atoi(fields[6])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
		return domain.Village{}, false
	}

	return domain.Village{
		ID:       id,
		Name:     util.DecodeFeedName(fields[1]),
		Coords:   domain.Coordinates{X: x, Y: y},
		PlayerID: playerID,
		Points:   points,
		Rank:     rank,
	}, true
}
