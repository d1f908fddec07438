package draft

// Sequence generates the snake-order pick list: the value at index i is
// the team on the clock for overall pick i+1. Odd rounds run team 1 up to
// numTeams, even rounds run back down.
func Sequence(numTeams, numRounds int) []int {
	order := make([]int, 0, numTeams*numRounds)
	for round := 0; round < numRounds; round++ {
		if round%2 == 0 {
			for team := 1; team <= numTeams; team++ {
				order = append(order, team)
			}
		} else {
			for team := numTeams; team >= 1; team-- {
				order = append(order, team)
			}
		}
	}
	return order
}

// RoundOf returns the 1-based round of a 1-based overall pick number.
func RoundOf(overall, numTeams int) int {
	return (overall-1)/numTeams + 1
}
