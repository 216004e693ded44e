package notifications

import (
	"fmt"
	"strings"
)

// DeathMessage announces a confirmed death and the teams that drafted it.
func DeathMessage(name string, owners []string) string {
	name = strings.TrimSpace(name)
	if len(owners) == 0 {
		return fmt.Sprintf("💀 %s is dead.", name)
	}
	return fmt.Sprintf("💀 %s is dead. Drafted by: %s.", name, strings.Join(owners, ", "))
}

// ScoreMessage announces the points team earns for name.
func ScoreMessage(team, name string, points, age int) string {
	if age > 0 {
		return fmt.Sprintf("🏆 %s scores %d points for %s (age %d).", team, points, name, age)
	}
	return fmt.Sprintf("🏆 %s scores %d points for %s.", team, points, name)
}

// TestMessage is sent by the test-notify command.
func TestMessage() string {
	return "🧪 fantamorto notification test"
}
