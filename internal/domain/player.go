package domain

import "sort"

// PlayerColors is the palette assigned to players in join order.
var PlayerColors = []string{
	"#EF4444", "#3B82F6", "#10B981", "#F59E0B",
	"#8B5CF6", "#EC4899", "#06B6D4", "#84CC16",
}

// ColorForIndex returns the palette colour for the n-th player, wrapping.
func ColorForIndex(n int) string {
	if n < 0 {
		n = 0
	}
	return PlayerColors[n%len(PlayerColors)]
}

// Standings returns players ordered by score, highest first. Ties keep turn order.
func Standings(players []*Player) []*Player {
	out := make([]*Player, len(players))
	copy(out, players)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Winners returns the players sharing the top score. Empty when nobody scored.
func Winners(players []*Player) []*Player {
	var best []*Player
	top := 0
	for _, p := range players {
		switch {
		case p.Score > top:
			top = p.Score
			best = []*Player{p}
		case p.Score == top && top > 0:
			best = append(best, p)
		}
	}
	return best
}
