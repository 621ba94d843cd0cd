package service

import (
	"math"
	"time"

	"github.com/rocketscienceinc/chainreaction/internal/chainreaction"
	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

const (
	weightOrbDifference  = 1.0
	weightPeripheral     = 0.2
	weightTerritory      = 0.1
	weightChainPotential = 0.5
	weightConversion     = 0.8
	weightCascade        = 0.7
	weightSafeMobility   = 0.4
	nearCriticalBonus    = 5.0
	cornerValue          = 3.0
	edgeValue            = 2.0
	interiorValue        = 1.0
)

var directions = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// evaluate - score of state from pov's perspective. A decided game scores ±Inf.
func evaluate(state *entity.GameState, heuristics []entity.Heuristic, pov entity.Side) float64 {
	if state.IsFinished() {
		if state.Winner == pov {
			return math.Inf(1)
		}
		return math.Inf(-1)
	}

	var total float64
	for _, heuristic := range heuristics {
		switch heuristic {
		case entity.HeuristicOrbDifference:
			total += float64(state.OrbsOf(pov)-state.OrbsOf(pov.Opponent())) * weightOrbDifference
		case entity.HeuristicPeripheralControl:
			total += peripheralControl(state.Board, pov) * weightPeripheral
		case entity.HeuristicTerritoryControl:
			total += territoryControl(state.Board, pov) * weightTerritory
		case entity.HeuristicChainReactionPotential:
			total += chainReactionPotential(state.Board, pov) * weightChainPotential
		case entity.HeuristicConversionPotential:
			total += conversionPotential(state.Board, pov) * weightConversion
		case entity.HeuristicCascadePotential:
			total += cascadePotential(state.Board, pov) * weightCascade
		case entity.HeuristicSafeMobility:
			total += safeMobility(state, pov) * weightSafeMobility
		}
	}

	return total
}

func signed(owner, pov entity.Side, value float64) float64 {
	if owner == pov {
		return value
	}
	return -value
}

func nearCritical(cell entity.Cell) bool {
	return cell.Owner != entity.SideNone && cell.Orbs == cell.CriticalMass-1
}

func peripheralControl(board entity.Board, pov entity.Side) float64 {
	lastRow, lastCol := board.Height()-1, board.Width()-1

	var score float64
	for r, row := range board {
		for c, cell := range row {
			if cell.IsEmpty() {
				continue
			}

			onRowEdge := r == 0 || r == lastRow
			onColEdge := c == 0 || c == lastCol

			value := interiorValue
			switch {
			case onRowEdge && onColEdge:
				value = cornerValue
			case onRowEdge || onColEdge:
				value = edgeValue
			}

			score += signed(cell.Owner, pov, value)
		}
	}

	return score
}

func territoryControl(board entity.Board, pov entity.Side) float64 {
	var score float64
	for _, row := range board {
		for _, cell := range row {
			if !cell.IsEmpty() {
				score += signed(cell.Owner, pov, 1)
			}
		}
	}

	return score
}

func chainReactionPotential(board entity.Board, pov entity.Side) float64 {
	var score float64
	for _, row := range board {
		for _, cell := range row {
			if nearCritical(cell) {
				score += signed(cell.Owner, pov, nearCriticalBonus)
			}
		}
	}

	return score
}

// conversionPotential - opponent neighbours a cell would capture, scaled by how close it is to exploding.
func conversionPotential(board entity.Board, pov entity.Side) float64 {
	var score float64
	for r, row := range board {
		for c, cell := range row {
			if cell.IsEmpty() {
				continue
			}

			missing := cell.CriticalMass - cell.Orbs
			if missing <= 0 {
				continue
			}

			hostile := 0
			for _, d := range directions {
				next := entity.Move{Row: r + d[0], Col: c + d[1]}
				if !board.InBounds(next) {
					continue
				}

				neighbour := board[next.Row][next.Col]
				if !neighbour.IsEmpty() && neighbour.Owner != cell.Owner {
					hostile++
				}
			}

			if hostile > 0 {
				score += signed(cell.Owner, pov, float64(hostile)/float64(missing))
			}
		}
	}

	return score
}

func cascadePotential(board entity.Board, pov entity.Side) float64 {
	var score float64
	for r, row := range board {
		for c, cell := range row {
			if !nearCritical(cell) {
				continue
			}

			var value float64
			for _, d := range directions {
				next := entity.Move{Row: r + d[0], Col: c + d[1]}
				if !board.InBounds(next) {
					continue
				}

				neighbour := board[next.Row][next.Col]
				if neighbour.IsEmpty() {
					continue
				}

				value += float64(neighbour.Orbs)
				if nearCritical(neighbour) {
					value += nearCriticalBonus
				}
			}

			score += signed(cell.Owner, pov, value)
		}
	}

	return score
}

// safeMobility - pov's moves after which no opponent reply reduces pov's orb count.
func safeMobility(state *entity.GameState, pov entity.Side) float64 {
	mine := state.Clone()
	mine.Turn = pov

	held := state.OrbsOf(pov)

	var safe float64
	for _, move := range chainreaction.ValidMoves(mine) {
		afterMine := mine.Clone()
		if err := chainreaction.Simulate(afterMine, move, time.Time{}); err != nil {
			continue
		}

		afterMine.Turn = pov.Opponent()

		isSafe := true
		for _, reply := range chainreaction.ValidMoves(afterMine) {
			afterReply := afterMine.Clone()
			if err := chainreaction.Simulate(afterReply, reply, time.Time{}); err != nil {
				continue
			}

			if afterReply.OrbsOf(pov) < held {
				isSafe = false
				break
			}
		}

		if isSafe {
			safe++
		}
	}

	return safe
}
