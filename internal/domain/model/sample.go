package model

// SamplePlayers returns the built-in player snapshot. A fresh slice is
// returned on every call.
func SamplePlayers() []Player {
	return []Player{
		{Name: "Patrick Mahomes", Position: "QB", Team: "KC", ProjectedPoints: 24.5, Last3Avg: 26.2, OpponentDefRank: 28},
		{Name: "Josh Allen", Position: "QB", Team: "BUF", ProjectedPoints: 23.8, Last3Avg: 22.1, OpponentDefRank: 15},
		{Name: "Christian McCaffrey", Position: "RB", Team: "SF", ProjectedPoints: 22.3, Last3Avg: 24.8, OpponentDefRank: 12},
		{Name: "Derrick Henry", Position: "RB", Team: "BAL", ProjectedPoints: 18.5, Last3Avg: 19.3, OpponentDefRank: 20},
		{Name: "CeeDee Lamb", Position: "WR", Team: "DAL", ProjectedPoints: 16.8, Last3Avg: 18.2, OpponentDefRank: 22},
		{Name: "Tyreek Hill", Position: "WR", Team: "MIA", ProjectedPoints: 17.2, Last3Avg: 15.9, OpponentDefRank: 18},
		{Name: "Travis Kelce", Position: "TE", Team: "KC", ProjectedPoints: 14.5, Last3Avg: 13.8, OpponentDefRank: 25},
		{Name: "George Kittle", Position: "TE", Team: "SF", ProjectedPoints: 12.3, Last3Avg: 11.5, OpponentDefRank: 16},
	}
}
