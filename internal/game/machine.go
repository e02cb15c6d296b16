package game

import (
	"sort"

	log "github.com/sirupsen/logrus"
)

// Scoring deltas per role, keyed by whether the Police guessed the Thief
// correctly. Raja and Rani score flat per round; only Police and Thief depend
// on the outcome.
var scoreDeltas = map[bool]map[Role]int{
	true:  {RoleRaja: 500, RoleRani: 600, RolePolice: 100, RoleThief: 0},
	false: {RoleRaja: 500, RoleRani: 600, RolePolice: 0, RoleThief: 100},
}

// startNextRound enters role-assignment: bumps the round counter, clears the
// previous round's reveal and guess, deals a fresh role permutation, and
// schedules the reveal phase. Room lock held by caller.
func (r *Registry) startNextRound(room *Room) {
	room.CurrentRound++
	room.Phase = PhaseRoleAssignment
	room.PoliceID = ""
	room.PendingGuess = nil
	room.UpdatedAt = r.now()

	roles := r.shuffleRoles()
	for i, p := range room.Players {
		p.Role = roles[i]
	}

	log.WithFields(log.Fields{"room": room.Code, "round": room.CurrentRound}).Info("round started")

	r.broadcast(room, EventGameStarted, GameStarted{
		CurrentRound: room.CurrentRound,
		TotalRounds:  room.TotalRounds,
		Players:      room.publicRoster(),
	})

	// Roles are never broadcast in the clear. Each player gets their own role
	// and a roster masked to show only that role.
	for _, p := range room.Players {
		if p.ConnID == "" {
			continue
		}
		masked := make([]MaskedRole, 0, len(room.Players))
		for _, other := range room.Players {
			entry := MaskedRole{ID: other.ID, Name: other.Name}
			if other.ID == p.ID {
				role := other.Role
				entry.Role = &role
			}
			masked = append(masked, entry)
		}
		r.notifier.Send(p.ConnID, EventRoleAssigned, RoleAssigned{
			Role:    p.Role,
			Players: masked,
		})
	}

	r.schedule(revealDelay, room.Code, func(room *Room) {
		if room.Phase != PhaseRoleAssignment {
			return
		}
		room.Phase = PhasePoliceReveal
		r.broadcast(room, EventPoliceRevealPhase, struct{}{})
	})
}

// PoliceReveal handles the Police player's disclosure signal. Accepted only
// from the Police-role player while the room is in police-reveal; anything
// else is a silent no-op.
func (r *Registry) PoliceReveal(code, playerID string) {
	room, ok := r.lookup(NormalizeRoomCode(code))
	if !ok {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Phase != PhasePoliceReveal {
		return
	}
	player := room.findPlayer(playerID)
	if player == nil || player.Role != RolePolice {
		return
	}

	room.Phase = PhaseGuessing
	room.PoliceID = playerID
	room.UpdatedAt = r.now()

	// One-time full reveal, Police eyes only.
	if player.ConnID != "" {
		revealed := make([]RevealedRole, 0, len(room.Players))
		for _, p := range room.Players {
			revealed = append(revealed, RevealedRole{ID: p.ID, Name: p.Name, Role: p.Role})
		}
		r.notifier.Send(player.ConnID, EventAllRoles, AllRoles{Players: revealed})
	}

	r.broadcast(room, EventPoliceRevealed, PoliceRevealed{
		PoliceID:   playerID,
		PoliceName: player.Name,
	})
}

// MakeGuess resolves the Police player's thief guess. Accepted only from the
// revealed Police while the room is in guessing; anything else is a silent
// no-op. Scoring applies exactly once, then results and the next transition
// are scheduled.
func (r *Registry) MakeGuess(code, playerID, guessedThiefID string) {
	room, ok := r.lookup(NormalizeRoomCode(code))
	if !ok {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Phase != PhaseGuessing || room.PoliceID != playerID {
		return
	}
	thief := room.findByRole(RoleThief)
	if thief == nil {
		return
	}

	isCorrect := thief.ID == guessedThiefID
	for _, p := range room.Players {
		p.Score += scoreDeltas[isCorrect][p.Role]
	}

	room.Phase = PhaseResults
	room.PendingGuess = &GuessOutcome{GuessedThiefID: guessedThiefID, IsCorrect: isCorrect}
	room.UpdatedAt = r.now()

	log.WithFields(log.Fields{
		"room":    room.Code,
		"round":   room.CurrentRound,
		"correct": isCorrect,
	}).Info("guess resolved")

	guessed := PlayerRef{ID: guessedThiefID}
	if p := room.findPlayer(guessedThiefID); p != nil {
		guessed.Name = p.Name
	}

	scored := make([]ScoredPlayer, 0, len(room.Players))
	for _, p := range room.Players {
		scored = append(scored, ScoredPlayer{ID: p.ID, Name: p.Name, Role: p.Role, Score: p.Score})
	}

	r.broadcast(room, EventRoundResult, RoundResult{
		IsCorrect:     isCorrect,
		Thief:         PlayerRef{ID: thief.ID, Name: thief.Name},
		GuessedPlayer: guessed,
		Players:       scored,
		CurrentRound:  room.CurrentRound,
		TotalRounds:   room.TotalRounds,
	})

	r.schedule(nextRoundDelay, room.Code, func(room *Room) {
		if room.Phase != PhaseResults {
			return
		}
		if room.CurrentRound >= room.TotalRounds {
			r.endGame(room)
		} else {
			r.startNextRound(room)
		}
	})
}

// endGame enters the terminal finished phase, broadcasts the leaderboard, and
// schedules the room's deletion. Finished is absorbing: a forced end on an
// already-finished room is a no-op so retention is scheduled exactly once.
// Room lock held by caller.
func (r *Registry) endGame(room *Room) {
	if room.Phase == PhaseFinished {
		return
	}
	room.Phase = PhaseFinished
	room.UpdatedAt = r.now()

	// Descending by score; the stable sort keeps join order on ties so the
	// earlier joiner ranks higher.
	ranked := make([]*Player, len(room.Players))
	copy(ranked, room.Players)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	leaderboard := make([]RankedPlayer, 0, len(ranked))
	for i, p := range ranked {
		leaderboard = append(leaderboard, RankedPlayer{
			ID:    p.ID,
			Name:  p.Name,
			Score: p.Score,
			Rank:  i + 1,
		})
	}

	log.WithField("room", room.Code).Info("game finished")

	r.broadcast(room, EventGameFinished, GameFinished{Leaderboard: leaderboard})

	r.schedule(roomRetention, room.Code, func(room *Room) {
		if room.Phase != PhaseFinished {
			return
		}
		r.RemoveRoom(room.Code)
	})
}
