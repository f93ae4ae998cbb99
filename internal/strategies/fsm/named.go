package fsm

import "github.com/MRamiBalles/ipd/internal/domain/action"

const (
	c = action.C
	d = action.D
)

// Fortress3 defects until the opponent signals with two defections, then
// cooperates while the opponent does.
func Fortress3() *Player {
	return named("Fortress3", []Transition{
		{1, d, 2, d}, {1, c, 1, d},
		{2, c, 1, d}, {2, d, 3, c},
		{3, c, 3, c}, {3, d, 1, d},
	}, 1, d)
}

// Fortress4 needs three defections as a handshake.
func Fortress4() *Player {
	return named("Fortress4", []Transition{
		{1, c, 1, d}, {1, d, 2, d},
		{2, c, 1, d}, {2, d, 3, d},
		{3, c, 1, d}, {3, d, 4, c},
		{4, c, 4, c}, {4, d, 1, d},
	}, 1, d)
}

func Predator() *Player {
	return named("Predator", []Transition{
		{0, c, 0, d}, {0, d, 1, d},
		{1, c, 2, d}, {1, d, 3, d},
		{2, c, 4, c}, {2, d, 3, d},
		{3, c, 5, d}, {3, d, 4, c},
		{4, c, 2, c}, {4, d, 6, d},
		{5, c, 7, d}, {5, d, 3, d},
		{6, c, 7, c}, {6, d, 7, d},
		{7, c, 8, d}, {7, d, 7, d},
		{8, c, 8, d}, {8, d, 6, d},
	}, 1, c)
}

func Raider() *Player {
	return named("Raider", []Transition{
		{0, c, 2, d}, {0, d, 2, d},
		{1, c, 1, c}, {1, d, 1, d},
		{2, c, 0, d}, {2, d, 3, c},
		{3, c, 0, d}, {3, d, 1, c},
	}, 0, d)
}

func Ripoff() *Player {
	return named("Ripoff", []Transition{
		{1, c, 2, c}, {1, d, 3, c},
		{2, c, 1, d}, {2, d, 3, c},
		{3, c, 3, c}, {3, d, 3, d},
	}, 1, d)
}

func SolutionB1() *Player {
	return named("SolutionB1", []Transition{
		{1, c, 2, d}, {1, d, 1, d},
		{2, c, 2, c}, {2, d, 3, c},
		{3, c, 3, c}, {3, d, 3, c},
	}, 1, d)
}

func SolutionB5() *Player {
	return named("SolutionB5", []Transition{
		{1, c, 2, c}, {1, d, 6, d},
		{2, c, 2, c}, {2, d, 3, d},
		{3, c, 6, c}, {3, d, 1, d},
		{4, c, 3, c}, {4, d, 6, d},
		{5, c, 5, d}, {5, d, 4, d},
		{6, c, 3, c}, {6, d, 5, d},
	}, 1, d)
}

func Thumper() *Player {
	return named("Thumper", []Transition{
		{1, c, 1, c}, {1, d, 2, d},
		{2, c, 1, d}, {2, d, 1, d},
	}, 1, c)
}
