package components

import "testing"

func TestScoreLeader(t *testing.T) {
	tests := []struct {
		scores [2]uint32
		want   int
	}{
		{[2]uint32{0, 0}, -1},
		{[2]uint32{2, 1}, 0},
		{[2]uint32{1, 3}, 1},
		{[2]uint32{2, 2}, -1},
	}
	for _, tt := range tests {
		s := ScoreData{Scores: tt.scores}
		if got := s.Leader(); got != tt.want {
			t.Errorf("Leader(%v) = %d, want %d", tt.scores, got, tt.want)
		}
	}
}
