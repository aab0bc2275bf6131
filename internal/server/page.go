package server

import (
	"strconv"
	"time"

	"github.com/FrankDatema/MindHop/internal/game"
)

func currentLabel(current string) string {
	if current == "" {
		return "none"
	}
	return current
}

func everyLabel(days int) string {
	return strconv.Itoa(days) + " d"
}

func lastSpawn(st game.ChoreStatus) string {
	if st.Record == nil {
		return "-"
	}
	return st.Record.SpawnTime().Format(time.RFC3339)
}

func nextReset(st game.ChoreStatus) string {
	if st.NextResetAt == nil {
		return "-"
	}
	return st.NextResetAt.Format(time.RFC3339)
}
