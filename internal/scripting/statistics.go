package scripting

// Statistics tracks session-level simulation results.
type Statistics struct {
	Bets    int     `json:"bets"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Wagered float64 `json:"wagered"`
	Profit  float64 `json:"profit"`
	Balance float64 `json:"balance"`
	StartBal float64 `json:"startBal"`

	WinStreak  int `json:"winStreak"`
	LoseStreak int `json:"loseStreak"`
	// Positive while winning, negative while losing.
	CurrentStreak int `json:"currentStreak"`

	HighestBet    float64 `json:"highestBet"`
	HighestProfit float64 `json:"highestProfit"`
	LowestProfit  float64 `json:"lowestProfit"`
}

// NewStatistics creates statistics seeded with a starting balance.
func NewStatistics(startBalance float64) *Statistics {
	return &Statistics{Balance: startBalance, StartBal: startBalance}
}

// Record applies one settled bet to the running totals.
func (s *Statistics) Record(win bool, bet, profit float64) {
	s.Bets++
	s.Wagered += bet
	s.Profit += profit
	s.Balance += profit

	if bet > s.HighestBet {
		s.HighestBet = bet
	}
	if s.Profit > s.HighestProfit {
		s.HighestProfit = s.Profit
	}
	if s.Profit < s.LowestProfit {
		s.LowestProfit = s.Profit
	}

	if win {
		s.Wins++
		if s.CurrentStreak < 0 {
			s.CurrentStreak = 0
		}
		s.CurrentStreak++
		if s.CurrentStreak > s.WinStreak {
			s.WinStreak = s.CurrentStreak
		}
	} else {
		s.Losses++
		if s.CurrentStreak > 0 {
			s.CurrentStreak = 0
		}
		s.CurrentStreak--
		if -s.CurrentStreak > s.LoseStreak {
			s.LoseStreak = -s.CurrentStreak
		}
	}
}
